package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/store"
)

// removeRecord deletes one record of kind by full ID or unique prefix.
func removeRecord(kind model.Kind, idPrefix string) error {
	return withStore(func(st *store.Store) error {
		id, err := st.Delete(kind, idPrefix)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("no %s with id %q", kind, idPrefix)
		case errors.Is(err, store.ErrAmbiguous):
			return fmt.Errorf("id %q matches more than one %s; use more characters", idPrefix, kind)
		case err != nil:
			return err
		}
		log.WithField("id", id).Debugf("deleted %s", kind)
		fmt.Printf("  Removed %s %s\n", kind, cli.ShortID(id))
		return nil
	})
}
