package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OriginSeed = "seed"
	OriginAPI  = "api"
)

type KnowledgePassage struct {
	Id             uuid.UUID
	Problem        string
	ProblemHash    string
	Content        string
	EmbeddingValue []float32
	Origin         string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// NewKnowledgePassage builds a passage whose content is what the solver later sees as context.
func NewKnowledgePassage(problem, solution, origin string) *KnowledgePassage {
	problem = strings.TrimSpace(problem)
	return &KnowledgePassage{
		Id:          uuid.New(),
		Problem:     problem,
		ProblemHash: HashProblem(problem),
		Content:     FormatPassage(problem, solution),
		Origin:      origin,
	}
}

func FormatPassage(problem, solution string) string {
	return fmt.Sprintf("Problem: %s\n\nSolution: %s", strings.TrimSpace(problem), strings.TrimSpace(solution))
}

func HashProblem(problem string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(problem))))
	return hex.EncodeToString(sum[:])
}
