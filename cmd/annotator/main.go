package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/siherrmann/annotator"
	"github.com/siherrmann/annotator/helper"
	"github.com/siherrmann/annotator/model"
	"github.com/spf13/cobra"
)

var (
	tokenizerPath string
	modelName     string
	vocabPath     string
	config        = model.DefaultAnnotationConfig()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "annotator",
		Short: "Entity linking annotations from token classification models",
	}

	rootCmd.PersistentFlags().StringVar(&tokenizerPath, "tokenizer", "", "path to the tokenizer.json of the model")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "huggingface name of the token classification model")
	rootCmd.PersistentFlags().StringVar(&vocabPath, "vocab", "", "label file replacing the model's labels, one label per line")
	rootCmd.PersistentFlags().IntVar(&config.TopK, "k", config.TopK, "number of ranked tags kept per subword")
	rootCmd.PersistentFlags().StringVar(&config.Resolver, "resolver", config.Resolver, "word resolver: majority, summed or first")
	rootCmd.PersistentFlags().StringVar(&config.NoEntityLabel, "no-entity", config.NoEntityLabel, "label of the no-entity tag")
	rootCmd.PersistentFlags().IntVar(&config.Workers, "workers", config.Workers, "number of sentences annotated concurrently")

	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(mentionsCmd())
	rootCmd.AddCommand(labelsCmd())
	rootCmd.AddCommand(relatedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newAnnotator creates an annotator with the default pipeline, connected to
// the database configured by the ANNOTATOR_DB_* environment if withDB is set
func newAnnotator(withDB bool, embeddingDim int) (*annotator.Annotator, error) {
	var dbConfig *helper.DatabaseConfiguration
	if withDB {
		var err error
		dbConfig, err = helper.NewDatabaseConfiguration()
		if err != nil {
			return nil, err
		}
	}

	a, err := annotator.NewAnnotator(dbConfig, embeddingDim, config)
	if err != nil {
		return nil, err
	}

	if tokenizerPath == "" || modelName == "" {
		return a, nil
	}
	if err := a.UseDefaultPipeline(tokenizerPath, modelName); err != nil {
		a.Close()
		return nil, err
	}

	if vocabPath != "" {
		vocab, err := model.LoadVocabulary(vocabPath, config.NoEntityLabel)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.SetVocabulary(vocab)
	}

	return a, nil
}

func annotateCmd() *cobra.Command {
	var asJSON bool
	var document bool

	cmd := &cobra.Command{
		Use:   "annotate [text]",
		Short: "Annotate text and print the linked phrases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenizerPath == "" || modelName == "" {
				return fmt.Errorf("--tokenizer and --model are required")
			}
			text := strings.Join(args, " ")

			a, err := newAnnotator(false, 0)
			if err != nil {
				return err
			}
			defer a.Close()

			var records []model.PhraseRecord
			if document {
				doc := &model.Document{Content: text}
				if err := a.AnnotateDocument(doc); err != nil {
					return err
				}
				for _, s := range doc.Sentences {
					records = append(records, s.Phrases...)
				}
			} else {
				records, err = a.AnnotateText(text)
				if err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				fmt.Println("No entities found.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("[%d, %d)  %-30s %s  %.3f\n", r.Start(), r.End(), r.Text, r, r.Score)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the records as JSON")
	cmd.Flags().BoolVar(&document, "document", false, "split the text into sentences first")
	return cmd
}

func ingestCmd() *cobra.Command {
	var embed bool
	var embeddingDim int

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Annotate a file and store its mentions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenizerPath == "" || modelName == "" {
				return fmt.Errorf("--tokenizer and --model are required")
			}
			config.EmbedMentions = embed

			a, err := newAnnotator(true, embeddingDim)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := model.NewDocumentFromFile(args[0], model.Metadata{"model": modelName})
			if err != nil {
				return err
			}

			count, err := a.ProcessAndInsertDocument(context.Background(), doc)
			if err != nil {
				return err
			}

			fmt.Printf("Stored document %s with %d mentions\n", doc.RID, count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&embed, "embed", false, "store mention embeddings")
	cmd.Flags().IntVar(&embeddingDim, "dim", 384, "embedding dimension of the mentions table")
	return cmd
}

func mentionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "mentions [label]",
		Short: "List stored mentions of a label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAnnotator(true, 384)
			if err != nil {
				return err
			}
			defer a.Close()

			mentions, err := a.MentionsByLabel(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			if len(mentions) == 0 {
				fmt.Println("No mentions stored for this label.")
				return nil
			}
			for _, m := range mentions {
				fmt.Printf("%s  [%d, %d)  %-30s %.3f\n", m.DocumentRID.String()[:8], m.StartChar, m.EndChar, m.Text, m.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of mentions to show")
	return cmd
}

func labelsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Show the most frequent stored labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAnnotator(true, 384)
			if err != nil {
				return err
			}
			defer a.Close()

			counts, err := a.LabelCounts(limit)
			if err != nil {
				return err
			}

			for _, c := range counts {
				fmt.Printf("%6d  %s\n", c.Count, c.Label)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of labels to show")
	return cmd
}

func relatedCmd() *cobra.Command {
	var hops int
	var minCount int

	cmd := &cobra.Command{
		Use:   "related [label]",
		Short: "Show labels mentioned together with a label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAnnotator(true, 384)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.RelatedLabels(context.Background(), strings.Join(args, " "), hops, minCount)
			if err != nil {
				return err
			}

			for _, r := range results[1:] {
				fmt.Printf("%d  %-40s %4d  %s\n", r.Distance, r.Label, r.Count, strings.Join(r.Path, " > "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hops, "hops", 2, "maximum number of hops")
	cmd.Flags().IntVar(&minCount, "min-count", 1, "minimum number of shared sentences")
	return cmd
}
