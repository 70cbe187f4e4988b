package community

import (
	"slices"
	"time"
)

// Topics disponibles para publicar; el filtro acepta además "all".
var Topics = []string{"general", "alimentación", "salud", "entrenamiento"}

const (
	DefaultTopic = "general"
	// MaxImages por publicación; las que sobran se descartan.
	MaxImages = 3
)

type Author struct {
	UserID string
	Name   string
	Role   string
}

type Comment struct {
	ID        string
	Author    Author
	Text      string
	CreatedAt time.Time
}

type Post struct {
	ID      string
	Author  Author
	Topic   string
	Title   string
	Content string
	Tags    []string
	// Images son referencias opacas (URL o data URL), no se procesan.
	Images []string

	Comments []Comment
	// Likes guarda los IDs de usuario; cada usuario cuenta una vez.
	Likes []string

	Version   int64
	CreatedAt time.Time
}

func (p Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

type Reply struct {
	Author    Author
	Text      string
	CreatedAt time.Time
}

// VetQuestion es una consulta abierta al equipo veterinario.
type VetQuestion struct {
	ID     string
	Author Author
	Text   string
	Image  string
	Reply  *Reply

	Version   int64
	CreatedAt time.Time
}

// ListFilter: Topic vacío o "all" no filtra; Query busca en título, contenido y tags.
type ListFilter struct {
	Query string
	Topic string
}
