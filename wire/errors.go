package wire

import (
	"fmt"

	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
)

func errUnexpectedStringTag(t tag.Tag) error {
	return fmt.Errorf("wire: tag 0x%02x is not a string/symbol tag: %w", byte(t), errs.ErrUnknownTag)
}
