package value

import (
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

// Scheduler-state symbols a Task's State field takes, per spec.md §4.4
// ("scheduler state (as a symbol in {runnable, done, failed})").
const (
	TaskRunnable Symbol = "runnable"
	TaskDone     Symbol = "done"
	TaskFailed   Symbol = "failed"
)

// encodeTask writes t, failing with errs.ErrRunningTask if it has not
// finished (spec error kind 3: unsupported-value, spec.md §7). The slot
// reservation mirrors encodeMutableRecord's cycle-closing discipline
// (task-local storage can hold a reference back to the task itself) but
// skips the identity table TryBackrefPointer uses elsewhere: Task is a
// plain struct with no stable cross-call address, so every encode of a
// Task value gets its own fresh slot rather than participating in
// cross-reference deduplication.
func encodeTask(w *wire.Writer, resolver *typedesc.DefaultResolver, t Task) error {
	if t.State == TaskRunnable {
		return errs.ErrRunningTask
	}

	slot := w.NextSlot()

	if err := w.EmitTag(tag.Task); err != nil {
		return err
	}

	w.PushPending(slot)

	if err := Encode(w, resolver, t.BodyClosure); err != nil {
		return err
	}
	if err := Encode(w, resolver, t.LocalStorage); err != nil {
		return err
	}
	if err := encodeSymbolOrString(w, string(t.State), true); err != nil {
		return err
	}
	if err := Encode(w, resolver, t.Result); err != nil {
		return err
	}

	var failed byte
	if t.Failed {
		failed = 1
	}
	if err := w.PutByte(failed); err != nil {
		return err
	}

	return w.PopPending(slot)
}

func decodeTask(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (Task, error) {
	slot := r.NextSlot()
	r.PushPending(slot)

	var t Task

	body, err := Decode(r, resolver, sandbox)
	if err != nil {
		return Task{}, err
	}
	t.BodyClosure = body

	tls, err := Decode(r, resolver, sandbox)
	if err != nil {
		return Task{}, err
	}
	t.LocalStorage = tls

	state, err := Decode(r, resolver, sandbox)
	if err != nil {
		return Task{}, err
	}
	sym, ok := state.(Symbol)
	if !ok {
		return Task{}, errs.ErrUnknownTag
	}
	t.State = sym

	result, err := Decode(r, resolver, sandbox)
	if err != nil {
		return Task{}, err
	}
	t.Result = result

	failedByte, err := r.GetByte()
	if err != nil {
		return Task{}, err
	}
	t.Failed = failedByte != 0

	if err := r.PopPending(slot); err != nil {
		return Task{}, err
	}
	r.Install(slot, t)

	return t, nil
}
