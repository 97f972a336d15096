package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/vecbridge/internal/vectorstore"
)

// collectionNamer is implemented by vector stores bound to one collection.
type collectionNamer interface {
	CollectionName() string
}

func collectionOf(v vectorstore.Vector) string {
	if n, ok := v.(collectionNamer); ok {
		return n.CollectionName()
	}
	return ""
}

// CreateResult is printed by create. IndexStruct is passed back with
// --index-struct to reuse the collection.
type CreateResult struct {
	Collection  string `json:"collection"`
	IndexStruct string `json:"index_struct"`
	Documents   int    `json:"documents"`
}

func newCreateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the dataset collection and index documents",
		Long: `Create the dataset's collection and insert documents with their
embeddings. Input is a JSON array of
{"page_content": ..., "metadata": {...}, "vector": [...]} records read from
--file or stdin. An empty array creates nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docs, embeddings, err := readRecords(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.withVector(cmd.Context(), func(ctx context.Context, ds *vectorstore.Dataset, v vectorstore.Vector) error {
				if err := v.Create(ctx, docs, embeddings); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), CreateResult{
					Collection:  collectionOf(v),
					IndexStruct: ds.IndexStruct,
					Documents:   len(docs),
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "records file (default: stdin)")
	return cmd
}

// AddResult is printed by add.
type AddResult struct {
	IDs []string `json:"ids"`
}

func newAddCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add documents to the dataset collection",
		Long: `Insert documents with their embeddings, creating the collection if
needed, and print the generated ids. Adding the same documents twice stores
them twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docs, embeddings, err := readRecords(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				ids, err := v.AddTexts(ctx, docs, embeddings)
				if err != nil {
					return err
				}
				if ids == nil {
					ids = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), AddResult{IDs: ids})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "records file (default: stdin)")
	return cmd
}

func newExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <id>",
		Short: "Report whether an item id exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				ok, err := v.TextExists(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"exists": ok})
			})
		},
	}
}

func newDeleteIDsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-ids <id>...",
		Short: "Delete items by id",
		Long:  `Delete items by id. Unknown ids are ignored.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				return v.DeleteByIDs(ctx, args)
			})
		},
	}
}

func newDeleteMetaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-meta <key> <value>",
		Short: "Delete items whose metadata key equals value",
		Long: `Delete every item whose metadata field key holds exactly the string
value. Items storing the same value as a number do not match.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				return v.DeleteByMetadataField(ctx, args[0], args[1])
			})
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		rawVector  string
		topK       int
		efSearch   int
		numThreads int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the dataset collection by vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rawVector == "" {
				return errors.New("--vector is required")
			}
			query, err := parseVector(rawVector)
			if err != nil {
				return err
			}
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				docs, err := v.SearchByVector(ctx, query,
					vectorstore.WithTopK(topK),
					vectorstore.WithEfSearch(efSearch),
					vectorstore.WithNumThreads(numThreads),
				)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), docs)
			})
		},
	}
	cmd.Flags().StringVar(&rawVector, "vector", "", "query vector as a JSON array")
	cmd.Flags().IntVar(&topK, "top-k", vectorstore.DefaultTopK, "maximum results")
	cmd.Flags().IntVar(&efSearch, "ef-search", vectorstore.DefaultEfSearch, "search breadth hint")
	cmd.Flags().IntVar(&numThreads, "num-threads", vectorstore.DefaultNumThreads, "query parallelism")
	return cmd
}

func newFullTextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fulltext <query>",
		Short: "Full-text search (chromem returns no results)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				docs, err := v.SearchByFullText(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), docs)
			})
		},
	}
}

func newDropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Delete the dataset collection and all its items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withVector(cmd.Context(), func(ctx context.Context, _ *vectorstore.Dataset, v vectorstore.Vector) error {
				if err := v.Delete(ctx); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"dropped": collectionOf(v)})
			})
		},
	}
}
