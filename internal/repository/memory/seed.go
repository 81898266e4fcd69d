package memory

import (
	"fmt"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedCategories() []entity.Category {
	return []entity.Category{
		{ID: "cat-it", Name: "Informatique", Slug: "informatique", Description: "Bureautique, programmation, réseaux"},
		{ID: "cat-mgmt", Name: "Management", Slug: "management", Description: "Gestion de projet et leadership"},
		{ID: "cat-lang", Name: "Langues", Slug: "langues", Description: "Anglais professionnel"},
	}
}

func seedTrainings() []entity.Training {
	return []entity.Training{
		{ID: "tr-office", CategoryID: "cat-it", Title: "Bureautique avancée", Description: "Word, Excel, PowerPoint", Price: 15000, DurationHours: 30, Seats: 20, StartDate: date(2026, 11, 3), IsPublished: true},
		{ID: "tr-web", CategoryID: "cat-it", Title: "Développement web", Description: "HTML, CSS, JavaScript", Price: 45000, DurationHours: 60, Seats: 15, StartDate: date(2026, 11, 10), IsPublished: true},
		{ID: "tr-network", CategoryID: "cat-it", Title: "Réseaux informatiques", Description: "TCP/IP, routage, sécurité", Price: 35000, DurationHours: 45, Seats: 12, StartDate: date(2026, 12, 1), IsPublished: true},
		{ID: "tr-project", CategoryID: "cat-mgmt", Title: "Gestion de projet", Description: "Méthodes agiles et classiques", Price: 25000, DurationHours: 24, Seats: 25, StartDate: date(2026, 11, 17), IsPublished: true},
		{ID: "tr-english", CategoryID: "cat-lang", Title: "Anglais des affaires", Description: "Communication professionnelle", Price: 20000, DurationHours: 40, Seats: 18, StartDate: date(2026, 11, 24), IsPublished: true},
		{ID: "tr-draft", CategoryID: "cat-mgmt", Title: "Leadership", Description: "En préparation", Price: 30000, DurationHours: 16, Seats: 10, StartDate: date(2027, 1, 12)},
	}
}

func seedGallery() []entity.GalleryItem {
	return []entity.GalleryItem{
		{ID: "g-1", Title: "Salle informatique", Category: "campus", ImageURL: "/images/gallery/lab.jpg", CreatedAt: date(2025, 9, 1)},
		{ID: "g-2", Title: "Remise des diplômes", Category: "events", ImageURL: "/images/gallery/graduation.jpg", CreatedAt: date(2025, 7, 12)},
		{ID: "g-3", Title: "Atelier web", Category: "trainings", ImageURL: "/images/gallery/workshop.jpg", CreatedAt: date(2025, 10, 20)},
		{ID: "g-4", Title: "Bibliothèque", Category: "campus", ImageURL: "/images/gallery/library.jpg", CreatedAt: date(2025, 6, 2)},
	}
}

func seedBookCategories() []entity.Category {
	return []entity.Category{
		{ID: "bcat-prog", Name: "Programmation", Slug: "programmation"},
		{ID: "bcat-biz", Name: "Business", Slug: "business"},
		{ID: "bcat-lit", Name: "Littérature", Slug: "litterature"},
	}
}

func seedBooks() []entity.Book {
	type row struct {
		title, author, category, lang, file string
		price                               int64
	}
	rows := []row{
		{"Go en pratique", "Awa Koné", "bcat-prog", "fr", "pdf", 8000},
		{"Algorithmique", "Jean Kouassi", "bcat-prog", "fr", "pdf", 0},
		{"Learning SQL", "Alan Beaulieu", "bcat-prog", "en", "epub", 12000},
		{"Clean Architecture", "Robert Martin", "bcat-prog", "en", "pdf", 15000},
		{"Réseaux pour débutants", "Marie Yao", "bcat-prog", "fr", "epub", 5000},
		{"Gérer une PME", "Koffi Adjoumani", "bcat-biz", "fr", "pdf", 7000},
		{"Marketing digital", "Fatou Traoré", "bcat-biz", "fr", "epub", 0},
		{"The Lean Startup", "Eric Ries", "bcat-biz", "en", "epub", 10000},
		{"Comptabilité générale", "Paul N'Guessan", "bcat-biz", "fr", "pdf", 6000},
		{"L'enfant noir", "Camara Laye", "bcat-lit", "fr", "epub", 0},
		{"Les soleils des indépendances", "Ahmadou Kourouma", "bcat-lit", "fr", "pdf", 4000},
		{"Things Fall Apart", "Chinua Achebe", "bcat-lit", "en", "epub", 5000},
		{"Une si longue lettre", "Mariama Bâ", "bcat-lit", "fr", "pdf", 0},
		{"Le pagne noir", "Bernard Dadié", "bcat-lit", "fr", "epub", 3000},
	}

	books := make([]entity.Book, 0, len(rows))
	for i, r := range rows {
		books = append(books, entity.Book{
			ID:          fmt.Sprintf("book-%02d", i+1),
			Title:       r.title,
			Author:      r.author,
			CategoryID:  r.category,
			Language:    r.lang,
			FileType:    r.file,
			Price:       r.price,
			IsFree:      r.price == 0,
			PublishedAt: date(2000+i, time.Month(i%12+1), 1),
			CreatedAt:   date(2025, 1, 1).AddDate(0, 0, i),
		})
	}
	return books
}
