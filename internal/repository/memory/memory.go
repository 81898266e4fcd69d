// Package memory хранилища в памяти. Используются по умолчанию и в тестах.
package memory

import (
	"github.com/rx3lixir/cepic-app/internal/repository"
)

// New возвращает полный набор хранилищ с демонстрационными данными
func New() *repository.Store {
	catalog := NewCatalog(seedCategories(), seedTrainings(), seedGallery())
	return &repository.Store{
		Users:       NewUsers(),
		Sessions:    NewSessions(),
		Codes:       NewCodes(),
		Catalog:     catalog,
		Books:       NewBooks(seedBookCategories(), seedBooks()),
		Enrollments: NewEnrollments(),
		Payments:    NewPayments(),
		Contacts:    NewContacts(),
	}
}
