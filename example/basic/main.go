package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/siherrmann/annotator"
	"github.com/siherrmann/annotator/helper"
	"github.com/siherrmann/annotator/model"
)

const sampleContent = `Grace Kelly is a song by the British singer Mika.
It reached number one on the UK Singles Chart in January 2007.

Mika wrote the song after a meeting with a record label in Paris.`

func main() {
	// Model and tokenizer of an entity linking token classification model
	modelName := os.Getenv("ANNOTATOR_MODEL")
	tokenizerPath := os.Getenv("ANNOTATOR_TOKENIZER")
	if modelName == "" || tokenizerPath == "" {
		log.Fatal("Set ANNOTATOR_MODEL and ANNOTATOR_TOKENIZER to run this example")
	}

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	config := model.DefaultAnnotationConfig()
	config.EmbedMentions = true
	config.SimilarityThreshold = 0.5

	a, err := annotator.NewAnnotator(dbConfig, 384, config)
	if err != nil {
		log.Fatalf("Failed to create annotator: %v", err)
	}
	defer a.Close()

	// Set up the default pipeline (tokenizer + token classification + embeddings)
	if err := a.UseDefaultPipeline(tokenizerPath, modelName); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Annotate a single sentence in memory
	records, err := a.AnnotateText("Grace Kelly is a song by Mika.")
	if err != nil {
		log.Fatalf("Failed to annotate text: %v", err)
	}
	fmt.Println("Sentence annotation:")
	for _, r := range records {
		fmt.Printf("  [%d, %d) %-20s -> %s (%.3f)\n", r.Start(), r.End(), r.Text, r.Label, r.Score)
	}

	// Annotate a document and store its mentions
	doc := &model.Document{
		Title:   "Grace Kelly (song)",
		Source:  "basic_example",
		Content: sampleContent,
		Metadata: model.Metadata{
			"topic": "music",
		},
	}

	fmt.Println("\nIngesting document...")
	numMentions, err := a.ProcessAndInsertDocument(context.Background(), doc)
	if err != nil {
		log.Fatalf("Failed to process and insert document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s\n", doc.RID)
	fmt.Printf("Inserted %d mentions\n", numMentions)

	// Find stored mentions close to a surface form
	similar, err := a.SimilarMentions("Mika", nil)
	if err != nil {
		log.Fatalf("Failed to search mentions: %v", err)
	}

	fmt.Printf("\nFound %d mentions similar to %q:\n", len(similar), "Mika")
	for _, m := range similar {
		fmt.Printf("  sentence %d: %-20s -> %s (similarity %.4f)\n", m.SentenceIndex, m.Text, m.Label, m.Similarity)
	}

	counts, err := a.LabelCounts(5)
	if err != nil {
		log.Fatalf("Failed to count labels: %v", err)
	}
	fmt.Println("\nMost frequent labels:")
	for _, c := range counts {
		fmt.Printf("  %3d  %s\n", c.Count, c.Label)
	}

	fmt.Println("\nBasic example completed successfully!")
}
