// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are read from an fs.FS (usually an embed.FS compiled into the
// binary) and follow the naming convention {version}_{description}.sql, for
// example "001_initial_schema.sql". Applied versions are tracked in the
// schema_migrations table. Each file runs inside its own transaction together
// with the row that records it, so a failed file leaves no partial state.
//
// Example usage:
//
//	manager := migration.NewManager(db, migrations, "migrations", logger)
//	if _, err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
