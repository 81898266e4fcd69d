// Package nav описывает навигацию фронтенда: переходы внутри приложения
// и полный уход на внешний URL (страница оплаты).
package nav

import "sync"

const (
	RouteHome          = "/"
	RouteLogin         = "/login"
	RouteRegister      = "/register"
	RouteVerify        = "/verify-2fa"
	RouteMyEnrollments = "/my-enrollments"
	RouteLibrary       = "/library"
)

// AuthRoutes страницы, на которых не нужен редирект на логин
var AuthRoutes = []string{RouteLogin, RouteRegister, RouteVerify, "/forgot-password", "/reset-password"}

// Navigator абстракция роутера фронтенда
type Navigator interface {
	Navigate(route string)
	Redirect(url string)
	CurrentPath() string
}

// IsAuthRoute проверяет, относится ли путь к страницам аутентификации
func IsAuthRoute(path string) bool {
	for _, r := range AuthRoutes {
		if path == r {
			return true
		}
	}
	return false
}

// Memory навигатор в памяти: хранит историю переходов
type Memory struct {
	mu        sync.RWMutex
	current   string
	history   []string
	redirects []string
}

func NewMemory(start string) *Memory {
	if start == "" {
		start = RouteHome
	}
	return &Memory{current: start, history: []string{start}}
}

func (m *Memory) Navigate(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = route
	m.history = append(m.history, route)
}

// Redirect уводит пользователя из приложения; текущий путь не меняется
func (m *Memory) Redirect(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirects = append(m.redirects, url)
}

func (m *Memory) CurrentPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Memory) History() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.history...)
}

func (m *Memory) Redirects() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.redirects...)
}
