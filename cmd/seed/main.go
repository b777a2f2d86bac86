package main

import (
	"context"
	"fmt"
	"time"

	"github.com/firegate/examcore/internal/config"
	"github.com/firegate/examcore/internal/database"
	"github.com/firegate/examcore/internal/logger"
	"github.com/firegate/examcore/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo candidate roster and one published paper with a mix of
// question kinds. Intended for local development and e2e runs.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding 20 Candidates ===")

	hash, err := bcrypt.GenerateFromPassword([]byte("examcore-dev"), bcrypt.MinCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Hash seed password")
	}

	names := []string{
		"Alice Hartono", "Ben Okafor", "Carla Mendes", "Daniel Wu", "Elena Petrova",
		"Farid Rahman", "Grace Lim", "Hugo Silva", "Ines Garcia", "Jonas Berg",
		"Katya Ivanova", "Leo Tanaka", "Mona Haddad", "Nils Larsen", "Omar Said",
		"Priya Nair", "Quentin Roy", "Rosa Duarte", "Samir Patel", "Tina Novak",
	}

	seeded := 0
	for i, name := range names {
		_, err := pool.Exec(ctx,
			`INSERT INTO candidates (username, name, password_hash)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (username) DO NOTHING`,
			fmt.Sprintf("candidate%d", i+1), name, string(hash))
		if err != nil {
			fmt.Printf("Error creating candidate %s: %v\n", name, err)
			continue
		}
		seeded++
	}
	fmt.Printf("Seeded %d/%d candidates.\n", seeded, len(names))

	fmt.Println("=== Seeding Demo Paper ===")

	paperID := uuid.New()
	now := time.Now()
	end := now.Add(30 * 24 * time.Hour)

	_, err = pool.Exec(ctx,
		`INSERT INTO exam_papers
		 (id, title, duration_minutes, start_time, end_time, is_published, status, allow_retake, pass_score, total_score)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6, TRUE, 0, 10)`,
		paperID, "Demo General Knowledge", 45, now, end, model.PaperStatusPublished)
	if err != nil {
		log.Fatal().Err(err).Msg("Create demo paper")
	}

	questions := []struct {
		kind   model.QuestionKind
		answer string
		points float64
	}{
		{model.KindSingleChoice, "B", 2},
		{model.KindMultipleChoice, "A,C,D", 2},
		{model.KindTrueFalse, "true", 2},
		{model.KindFillInBlank, "gopher|go gopher", 2},
		{model.KindEssay, "", 2},
	}
	for i, q := range questions {
		_, err := pool.Exec(ctx,
			`INSERT INTO paper_questions (question_id, paper_id, kind, correct_answer, points, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), paperID, q.kind, q.answer, q.points, i)
		if err != nil {
			log.Fatal().Err(err).Int("order", i).Msg("Create demo question")
		}
	}

	fmt.Printf("Seed completed! Demo paper: %s\n", paperID)
}
