package types

// TablePrefixPlaceholder is replaced by Config.Prefix in every table name and
// SQL statement before it reaches the database.
const TablePrefixPlaceholder = "#__"

// Logical table names, written with the prefix placeholder.
const (
	AssetsTable     = "#__assets"
	CategoriesTable = "#__categories"
	ContentTable    = "#__content"
	ExtensionsTable = "#__extensions"
)

// BackupSuffix is appended to a table name to form its backup table name.
const BackupSuffix = "_backup"

// RepairedTables lists the tables the repair mutates and therefore backs up
// before touching anything.
var RepairedTables = []string{
	AssetsTable,
	CategoriesTable,
	ContentTable,
}

// BackupTableName returns the shadow table name for table.
func BackupTableName(table string) string {
	return table + BackupSuffix
}
