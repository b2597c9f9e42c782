package storage

import "embed"

//go:embed migrations/*.sql
var migrations embed.FS

func readMigration(name string) (string, error) {
	b, err := migrations.ReadFile("migrations/" + name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
