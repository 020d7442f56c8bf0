package kdbx

import (
	"fmt"
	"os"

	"github.com/systmms/kpsec/internal/secure"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
)

// CreateDatabase bootstraps a new KDBX4 file at path, encrypted with key.
// The database starts with a "General" group for entries and a "Recycle
// Bin" group so deletion semantics match what KeePass clients produce.
// An existing file is never overwritten.
func CreateDatabase(path, databaseName string, key *secure.Key) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("database file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}

	keyBuf, err := key.Open()
	if err != nil {
		return err
	}
	defer keyBuf.Destroy()

	general := gokeepasslib.NewGroup()
	general.Name = "General"
	recycleBin := gokeepasslib.NewGroup()
	recycleBin.Name = "Recycle Bin"

	db := gokeepasslib.NewDatabase(gokeepasslib.WithDatabaseKDBXVersion4())
	db.Content.Meta.DatabaseName = databaseName
	db.Content.Root.Groups = []gokeepasslib.Group{general, recycleBin}
	db.Credentials = gokeepasslib.NewPasswordCredentials(string(keyBuf.Bytes()))

	if err := db.LockProtectedEntries(); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	return gokeepasslib.NewEncoder(file).Encode(db)
}
