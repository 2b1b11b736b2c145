package cli

import (
	"fmt"
	"strconv"

	"github.com/gear6io/mtgapi/server/config"
	"github.com/gear6io/mtgapi/server/domain/card"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/gear6io/mtgapi/server/schema/types"
	"github.com/gear6io/mtgapi/server/storage/sqlstore"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the cache table synthesized for cards",
		Long: `Print the table the cache creates for card records.

Examples:
  mtgapi schema                # column table
  mtgapi schema --format sql   # CREATE TABLE statement`,
		Args: cobra.NoArgs,
		RunE: runSchema,
	}
	cmd.Flags().StringP("format", "f", "table", "output format: table or sql")
	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	def, err := table.Synthesize(card.Definition, zerolog.Nop())
	if err != nil {
		return err
	}

	switch format {
	case "table":
		out, err := renderColumns(def)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	case "sql":
		ddl, err := renderDDL(cmd, def)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ddl+";")
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected table or sql", format)
	}
}

func renderColumns(def *table.Definition) (string, error) {
	data := pterm.TableData{{"Column", "Type", "Primary Key", "Nullable"}}
	for _, col := range def.Columns {
		data = append(data, []string{
			col.Name,
			types.Format(col.Type, col.ElementType),
			strconv.FormatBool(col.PrimaryKey),
			strconv.FormatBool(col.Nullable),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func renderDDL(cmd *cobra.Command, def *table.Definition) (string, error) {
	store, err := sqlstore.Open(config.DatabaseConfig{DSN: ":memory:"}, zerolog.Nop())
	if err != nil {
		return "", err
	}
	if err := store.Connect(cmd.Context()); err != nil {
		return "", err
	}
	defer store.Close()

	return store.CreateTableSQL(def)
}
