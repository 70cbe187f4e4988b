package admin

import (
	"time"

	"smart-feeding/internal/domain/community"
	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/domain/records"
)

// Stats es el resumen del panel de administración.
type Stats struct {
	TotalUsers   int `json:"total_users"`
	TotalPets    int `json:"total_pets"`
	TotalQuizzes int `json:"total_quizzes"`
	TotalRecords int `json:"total_records"`
	// ActiveToday cuenta las sesiones iniciadas hoy (hora del servidor).
	ActiveToday int `json:"active_today"`
}

type ActivityType string

const (
	ActivityUserRegistered ActivityType = "user_registered"
	ActivityQuizCompleted  ActivityType = "quiz_completed"
)

type Activity struct {
	Type        ActivityType `json:"type"`
	User        string       `json:"user"`
	Timestamp   time.Time    `json:"timestamp"`
	Description string       `json:"description"`
}

// Snapshot es el volcado completo que se exporta y respalda.
// Nunca incluye hashes de contraseña.
type Snapshot struct {
	Users       []ExportUser    `json:"users"`
	Pets        []ExportPet     `json:"pets"`
	QuizResults []ExportQuiz    `json:"quiz_results"`
	Sessions    []ExportSession `json:"sessions"`
	// Posts y VetQuestions vienen de la comunidad, más nuevas primero.
	Posts        []ExportPost     `json:"posts"`
	VetQuestions []ExportQuestion `json:"vet_questions"`
	ExportedAt   time.Time        `json:"exported_at"`
}

type ExportUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ExportPet struct {
	ID                 string                    `json:"id"`
	OwnerUserID        string                    `json:"owner_user_id"`
	Name               string                    `json:"name"`
	Species            nutrition.Species         `json:"species"`
	Breed              string                    `json:"breed"`
	AgeYears           float64                   `json:"age_years"`
	WeightKg           float64                   `json:"weight_kg"`
	SpecialConditions  string                    `json:"special_conditions,omitempty"`
	Notes              string                    `json:"notes,omitempty"`
	HasRecommendations bool                      `json:"has_recommendations"`
	SavedPlan          *nutrition.Recommendation `json:"saved_plan,omitempty"`
	// Records es el historial de la mascota en orden de inserción.
	Records   []ExportRecord `json:"records"`
	CreatedAt time.Time      `json:"created_at"`
}

type ExportRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Date        string    `json:"date"`
	Weight      float64   `json:"weight,omitempty"`
	ExpenseType string    `json:"expense_type,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	Grams       float64   `json:"grams,omitempty"`
	FoodType    string    `json:"food_type,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type ExportAuthor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type ExportComment struct {
	ID        string       `json:"id"`
	Author    ExportAuthor `json:"author"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

type ExportPost struct {
	ID        string          `json:"id"`
	Author    ExportAuthor    `json:"author"`
	Topic     string          `json:"topic"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Tags      []string        `json:"tags"`
	Images    []string        `json:"images,omitempty"`
	Comments  []ExportComment `json:"comments"`
	Likes     []string        `json:"likes"`
	CreatedAt time.Time       `json:"created_at"`
}

type ExportReply struct {
	Author    ExportAuthor `json:"author"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

type ExportQuestion struct {
	ID        string       `json:"id"`
	Author    ExportAuthor `json:"author"`
	Text      string       `json:"text"`
	Image     string       `json:"image,omitempty"`
	Reply     *ExportReply `json:"reply,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type ExportQuiz struct {
	ID             string                   `json:"id"`
	UserID         string                   `json:"user_id"`
	PetID          string                   `json:"pet_id,omitempty"`
	Answers        nutrition.Answers        `json:"answers"`
	Recommendation nutrition.Recommendation `json:"recommendation"`
	CompletedAt    time.Time                `json:"completed_at"`
}

type ExportSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func exportRecords(rs []records.Record) []ExportRecord {
	out := make([]ExportRecord, 0, len(rs))
	for _, r := range rs {
		out = append(out, ExportRecord{
			ID:          r.ID,
			Kind:        string(r.Kind),
			Date:        r.Date,
			Weight:      r.Weight,
			ExpenseType: r.ExpenseType,
			Amount:      r.Amount,
			Grams:       r.Grams,
			FoodType:    r.FoodType,
			Note:        r.Note,
			CreatedBy:   r.CreatedBy,
			RecordedAt:  r.RecordedAt,
		})
	}
	return out
}

func exportAuthor(a community.Author) ExportAuthor {
	return ExportAuthor{UserID: a.UserID, Name: a.Name, Role: a.Role}
}

func exportPosts(ps []community.Post) []ExportPost {
	out := make([]ExportPost, 0, len(ps))
	for _, p := range ps {
		comments := make([]ExportComment, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, ExportComment{
				ID: c.ID, Author: exportAuthor(c.Author), Text: c.Text, CreatedAt: c.CreatedAt,
			})
		}
		out = append(out, ExportPost{
			ID:        p.ID,
			Author:    exportAuthor(p.Author),
			Topic:     p.Topic,
			Title:     p.Title,
			Content:   p.Content,
			Tags:      append([]string{}, p.Tags...),
			Images:    p.Images,
			Comments:  comments,
			Likes:     append([]string{}, p.Likes...),
			CreatedAt: p.CreatedAt,
		})
	}
	return out
}

func exportQuestions(qs []community.VetQuestion) []ExportQuestion {
	out := make([]ExportQuestion, 0, len(qs))
	for _, q := range qs {
		eq := ExportQuestion{
			ID: q.ID, Author: exportAuthor(q.Author), Text: q.Text, Image: q.Image, CreatedAt: q.CreatedAt,
		}
		if q.Reply != nil {
			eq.Reply = &ExportReply{Author: exportAuthor(q.Reply.Author), Text: q.Reply.Text, CreatedAt: q.Reply.CreatedAt}
		}
		out = append(out, eq)
	}
	return out
}

// SystemInfo describe la instancia en ejecución.
type SystemInfo struct {
	Platform   string     `json:"platform"`
	Version    string     `json:"version"`
	Storage    string     `json:"storage"`
	Users      int        `json:"users"`
	Pets       int        `json:"pets"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	BackupSink string     `json:"backup_sink,omitempty"`
}
