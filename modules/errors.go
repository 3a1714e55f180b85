package modules

import "github.com/spotifreak/spotifreak/errs"

func moduleMissingError(typeName string) error {
	return errs.Newf(errs.ModuleMissing, "no module registered for type %q", typeName)
}
