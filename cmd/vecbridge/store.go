package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vecbridge/internal/chromemdb"
	"github.com/fyrsmithlabs/vecbridge/internal/vectorstore"
)

// newStoreCmd groups offline maintenance of a persistent chromem store.
// None of its commands open the database.
func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and repair the on-disk vector store",
		Long: `Inspect and repair a persistent store (VECTORSTORE_URL=file://...).

A collection directory that lost its metadata file is moved to .quarantine
the next time the store is opened. To bring it back:

  vecbridge store recover <collection-name>
  vecbridge store restore <collection-dir>`,
	}
	cmd.AddCommand(newStoreInspectCmd(a), newStoreRecoverCmd(a), newStoreRestoreCmd(a))
	return cmd
}

func (a *app) storeParams() chromemdb.ClientParams {
	return vectorstore.ChromemConfig{URL: a.cfg.VectorStore.URL}.ToClientParams()
}

func newStoreInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report collection directories and their health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := chromemdb.Inspect(a.storeParams())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newStoreRecoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recover <collection-name>",
		Short: "Rewrite a missing collection metadata file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := chromemdb.RecoverMetadata(a.storeParams(), args[0])
			if err != nil {
				return err
			}
			if path != "" {
				a.logger.Info(cmd.Context(), "collection metadata recovered",
					zap.String("collection", args[0]),
					zap.String("path", path),
				)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"collection": args[0],
				"dir":        chromemdb.CollectionDirName(args[0]),
				"recovered":  path != "",
			})
		},
	}
}

func newStoreRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <collection-dir>",
		Short: "Move a repaired collection out of quarantine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := chromemdb.RestoreQuarantined(a.storeParams(), args[0]); err != nil {
				return err
			}
			a.logger.Info(cmd.Context(), "collection restored from quarantine",
				zap.String("collection_dir", args[0]))
			return writeJSON(cmd.OutOrStdout(), map[string]string{"restored": args[0]})
		},
	}
}
