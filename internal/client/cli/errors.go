package cli

import (
	"errors"
	"io/fs"

	"github.com/dmitrijs2005/menuroll/internal/client/services"
	"github.com/dmitrijs2005/menuroll/internal/common"
)

var errNoMenu = errors.New("no menu rolled yet")

// usageError is shown to the user as is.
type usageError string

func (e usageError) Error() string { return string(e) }

// errorMessage turns a command error into a line for the user.
func errorMessage(err error) string {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		return string(ue)
	case errors.Is(err, errNoMenu):
		return "No menu rolled yet, run roll first"
	case errors.Is(err, common.ErrorNotFound):
		return "Not found"
	case errors.Is(err, common.ErrInvalidRecipe):
		return err.Error()
	case errors.Is(err, common.ErrEmptyMenu):
		return "Nothing to roll, ask for at least one dish"
	case errors.Is(err, common.ErrNothingToReroll):
		return "No other recipe available for this category"
	case errors.Is(err, services.ErrIndexOutOfRange), errors.Is(err, services.ErrChecklistIndex):
		return "No such item"
	case errors.Is(err, services.ErrPassphraseRequired):
		return "A local passphrase is required"
	case errors.Is(err, fs.ErrNotExist):
		return "File not found"
	case errors.Is(err, fs.ErrPermission):
		return "Permission denied"
	default:
		return services.UserMessage(err)
	}
}
