package admin

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/domain/community"
	"smart-feeding/internal/domain/nutrition"
	"smart-feeding/internal/domain/pets"
	"smart-feeding/internal/domain/quiz"
	"smart-feeding/internal/domain/records"
	"smart-feeding/internal/domain/users"
)

type fakeUsers struct {
	users    []users.User
	sessions []users.Session
}

func (f fakeUsers) List(context.Context) ([]users.User, error) {
	return append([]users.User(nil), f.users...), nil
}

func (f fakeUsers) Sessions(context.Context) ([]users.Session, error) { return f.sessions, nil }

type fakePets []pets.Pet

func (f fakePets) List(context.Context) ([]pets.Pet, error) { return f, nil }

type fakeQuizzes []quiz.Result

func (f fakeQuizzes) List(context.Context) ([]quiz.Result, error) { return f, nil }

type fakeRecords struct {
	total int
	byPet map[string][]records.Record
}

func (f fakeRecords) Count(context.Context) (int, error) { return f.total, nil }

func (f fakeRecords) History(_ context.Context, petID string) ([]records.Record, error) {
	return f.byPet[petID], nil
}

type fakeCommunity struct {
	posts     []community.Post
	questions []community.VetQuestion
}

func (f fakeCommunity) ListPosts(context.Context, community.ListFilter) ([]community.Post, error) {
	return f.posts, nil
}

func (f fakeCommunity) ListQuestions(context.Context) ([]community.VetQuestion, error) {
	return f.questions, nil
}

type memSink struct {
	files map[string][]byte
	err   error
}

func (m *memSink) Write(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.files[name] = data
	return "mem://" + name, nil
}

func (m *memSink) String() string { return "mem" }

var now = time.Date(2024, 8, 20, 18, 0, 0, 0, time.UTC)

func newTestService(sink Sink) *Service {
	var us []users.User
	for i := 0; i < 7; i++ {
		us = append(us, users.User{
			ID:           fmt.Sprintf("u%d", i),
			Email:        fmt.Sprintf("u%d@mail.com", i),
			FullName:     fmt.Sprintf("User %d", i),
			PasswordHash: "$2a$secret",
			Role:         "user",
			CreatedAt:    now.Add(-time.Duration(7-i) * time.Hour),
		})
	}
	sessions := []users.Session{
		{ID: "s1", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "s2", UserID: "u1", CreatedAt: now.Add(-30 * time.Hour)},
		{ID: "s3", UserID: "u2", CreatedAt: now.Add(-17 * time.Hour)},
	}
	rec := nutrition.Generate(nutrition.Answers{}, nutrition.Profile{WeightKg: 5})
	quizzes := fakeQuizzes{
		{ID: "q1", UserID: "u6", Recommendation: rec, CompletedAt: now.Add(-10 * time.Minute)},
		{ID: "q2", UserID: "ghost", CompletedAt: now.Add(-5 * time.Minute)},
	}
	ps := fakePets{
		{ID: "p1", OwnerUserID: "u1", Name: "Firulais", Species: nutrition.SpeciesDog, SavedPlan: &rec},
		{ID: "p2", OwnerUserID: "u2", Name: "Misu", Species: nutrition.SpeciesCat},
	}
	hist := fakeRecords{total: 12, byPet: map[string][]records.Record{
		"p1": {
			{ID: "r1", PetID: "p1", Kind: records.KindWeight, Date: "2024-08-01", Weight: 12.5, CreatedBy: "u1", RecordedAt: now.Add(-48 * time.Hour)},
			{ID: "r2", PetID: "p1", Kind: records.KindExpense, Date: "2024-08-02", ExpenseType: "veterinario", Amount: 350, RecordedAt: now.Add(-24 * time.Hour)},
			{ID: "r3", PetID: "p1", Kind: records.KindMedicalNote, Date: "2024-08-03", Note: "vacuna antirrábica", RecordedAt: now.Add(-time.Hour)},
		},
	}}
	vet := community.Author{UserID: "u0", Name: "User 0", Role: "vet"}
	comm := fakeCommunity{
		posts: []community.Post{{
			ID:        "post1",
			Author:    community.Author{UserID: "u1", Name: "User 1", Role: "user"},
			Topic:     "nutricion",
			Title:     "¿Croquetas o comida casera?",
			Content:   "Mi perro no quiere comer croquetas",
			Tags:      []string{"perros"},
			Comments:  []community.Comment{{ID: "c1", Author: vet, Text: "Mezcla de a poco", CreatedAt: now.Add(-20 * time.Minute)}},
			Likes:     []string{"u2", "u3"},
			CreatedAt: now.Add(-time.Hour),
		}},
		questions: []community.VetQuestion{
			{ID: "vq1", Author: community.Author{UserID: "u2", Name: "User 2", Role: "user"}, Text: "¿Cuánta agua?", Reply: &community.Reply{Author: vet, Text: "Siempre disponible", CreatedAt: now}, CreatedAt: now.Add(-3 * time.Hour)},
			{ID: "vq2", Author: community.Author{UserID: "u3", Name: "User 3", Role: "user"}, Text: "¿Puede comer huevo?", CreatedAt: now.Add(-4 * time.Hour)},
		},
	}

	svc := NewService(fakeUsers{users: us, sessions: sessions}, ps, quizzes, hist, Options{
		Community: comm,
		Sink:      sink,
		Storage:   "memory",
		Version:   "test",
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestStats(t *testing.T) {
	svc := newTestService(nil)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalUsers: 7, TotalPets: 2, TotalQuizzes: 2, TotalRecords: 12, ActiveToday: 2}, st)
}

func TestRecentUsersAndActivity(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	recent, err := svc.RecentUsers(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentUsersLimit)
	assert.Equal(t, "u6", recent[0].ID)
	assert.Equal(t, "u2", recent[4].ID)

	act, err := svc.RecentActivity(ctx)
	require.NoError(t, err)
	require.Len(t, act, 9)
	assert.Equal(t, ActivityQuizCompleted, act[0].Type)
	assert.Equal(t, "Usuario", act[0].User)
	assert.Equal(t, "User 6 completó un cuestionario", act[1].Description)
	assert.Equal(t, ActivityUserRegistered, act[2].Type)
}

func TestExport_NoPasswordHashes(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	for _, f := range []Format{FormatJSON, FormatMsgpack} {
		t.Run(string(f), func(t *testing.T) {
			data, err := svc.Export(ctx, f)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "$2a$secret")

			snap, err := Decode(data, f)
			require.NoError(t, err)
			assert.Len(t, snap.Users, 7)
			assert.Len(t, snap.Sessions, 3)
			require.Len(t, snap.Pets, 2)
			require.NotNil(t, snap.Pets[0].SavedPlan)
			assert.Equal(t, 150, snap.Pets[0].SavedPlan.DietPlan.Calories)
			assert.True(t, now.Equal(snap.ExportedAt))
		})
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExport_HistoryAndCommunity(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	for _, f := range []Format{FormatJSON, FormatMsgpack} {
		t.Run(string(f), func(t *testing.T) {
			data, err := svc.Export(ctx, f)
			require.NoError(t, err)

			snap, err := Decode(data, f)
			require.NoError(t, err)

			require.Len(t, snap.Pets, 2)
			hist := snap.Pets[0].Records
			require.Len(t, hist, 3)
			assert.Equal(t, "r1", hist[0].ID)
			assert.Equal(t, string(records.KindWeight), hist[0].Kind)
			assert.Equal(t, 12.5, hist[0].Weight)
			assert.Equal(t, "u1", hist[0].CreatedBy)
			assert.True(t, now.Add(-48*time.Hour).Equal(hist[0].RecordedAt))
			assert.Equal(t, "veterinario", hist[1].ExpenseType)
			assert.Equal(t, 350.0, hist[1].Amount)
			assert.Equal(t, string(records.KindMedicalNote), hist[2].Kind)
			assert.Equal(t, "vacuna antirrábica", hist[2].Note)
			assert.Empty(t, snap.Pets[1].Records)

			require.Len(t, snap.Posts, 1)
			post := snap.Posts[0]
			assert.Equal(t, "¿Croquetas o comida casera?", post.Title)
			assert.Equal(t, ExportAuthor{UserID: "u1", Name: "User 1", Role: "user"}, post.Author)
			assert.Equal(t, []string{"perros"}, post.Tags)
			assert.Equal(t, []string{"u2", "u3"}, post.Likes)
			require.Len(t, post.Comments, 1)
			assert.Equal(t, "vet", post.Comments[0].Author.Role)
			assert.Equal(t, "Mezcla de a poco", post.Comments[0].Text)

			require.Len(t, snap.VetQuestions, 2)
			require.NotNil(t, snap.VetQuestions[0].Reply)
			assert.Equal(t, "Siempre disponible", snap.VetQuestions[0].Reply.Text)
			assert.True(t, now.Equal(snap.VetQuestions[0].Reply.CreatedAt))
			assert.Nil(t, snap.VetQuestions[1].Reply)
			assert.Equal(t, "¿Puede comer huevo?", snap.VetQuestions[1].Text)
		})
	}
}

func TestSnapshot_WithoutCommunity(t *testing.T) {
	svc := NewService(fakeUsers{}, fakePets{{ID: "p1"}}, fakeQuizzes{}, nil, Options{})

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Posts)
	assert.Empty(t, snap.VetQuestions)
	require.Len(t, snap.Pets, 1)
	assert.Empty(t, snap.Pets[0].Records)

	data, err := Encode(snap, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"posts": []`)
	assert.Contains(t, string(data), `"records": []`)
}

func TestBackup(t *testing.T) {
	sink := &memSink{files: map[string][]byte{}}
	svc := newTestService(sink)
	ctx := context.Background()

	info, err := svc.SystemInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, info.LastBackup)
	assert.Equal(t, "mem", info.BackupSink)

	loc, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mem://smart-feeding-backup-2024-08-20.json", loc)
	assert.Contains(t, sink.files, "smart-feeding-backup-2024-08-20.json")

	info, err = svc.SystemInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info.LastBackup)
	assert.Equal(t, Platform, info.Platform)
	assert.Equal(t, 7, info.Users)

	_, err = newTestService(nil).Backup(ctx)
	assert.ErrorIs(t, err, ErrNoSink)
}

type backupCounter struct{ ok, failed int }

func (b *backupCounter) ObserveBackup(err error) {
	if err != nil {
		b.failed++
		return
	}
	b.ok++
}

func TestBackupJob(t *testing.T) {
	sink := &memSink{files: map[string][]byte{}}
	obs := &backupCounter{}
	job := NewBackupJob(newTestService(sink), obs)

	assert.Equal(t, "backup", job.Name())
	require.NoError(t, job.Run())

	sink.err = errors.New("disk full")
	assert.Error(t, job.Run())
	assert.Equal(t, backupCounter{ok: 1, failed: 1}, *obs)
}
