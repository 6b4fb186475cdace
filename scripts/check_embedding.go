//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math"

	"cara-compliance-be/internal/config"
	"cara-compliance-be/pkg/embedding"
)

// CosineSimilarity calculates similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func main() {
	cfg := config.Load()
	fmt.Printf("Loaded Config > Embedding Provider: %s\n", cfg.Ai.EmbeddingProvider)
	fmt.Printf("Loaded Config > Ollama URL: %s\n", cfg.Ai.OllamaBaseURL)

	provider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	ctx := context.Background()

	doc := "Risk treatment plans must name an owner and a deadline for every High risk."
	queryNear := "who is responsible for handling a high risk"
	queryFar := "what toppings go on a pizza"

	docResp, err := provider.Generate(ctx, doc, embedding.TaskRetrievalDocument)
	if err != nil {
		log.Fatalf("Error generating document embedding: %v", err)
	}
	fmt.Printf("Document embedding dimensions: %d\n", len(docResp.Embedding.Values))

	nearResp, err := provider.Generate(ctx, queryNear, embedding.TaskRetrievalQuery)
	if err != nil {
		log.Fatalf("Error generating query embedding: %v", err)
	}
	farResp, err := provider.Generate(ctx, queryFar, embedding.TaskRetrievalQuery)
	if err != nil {
		log.Fatalf("Error generating query embedding: %v", err)
	}

	near := CosineSimilarity(docResp.Embedding.Values, nearResp.Embedding.Values)
	far := CosineSimilarity(docResp.Embedding.Values, farResp.Embedding.Values)

	fmt.Printf("Similarity (related query): %.4f\n", near)
	fmt.Printf("Similarity (unrelated query): %.4f\n", far)
	if near > far {
		fmt.Println("OK: related query scores higher than unrelated query")
	} else {
		fmt.Println("WARNING: unrelated query scored higher, check the model")
	}
}
