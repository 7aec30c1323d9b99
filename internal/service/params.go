// params.go — маппер caller-facing токенов фильтрации в директивы
// слоя репозиториев. Словарь фиксированный: направления asc/desc,
// ключи сортировки time/title, состояния all/live/done.
// Нераспознанный токен — жёсткая ошибка валидации, «undefined»
// дальше этого слоя не проходит.
package service

import (
	"fmt"

	"github.com/strimly/data-module/internal/repository"
)

// ListParams — caller-facing параметры списковых запросов.
// Пустой токен означает «не задан» и заменяется значением по умолчанию:
// sort=time, order=desc, state=all.
type ListParams struct {
	// Sort — ключ сортировки: time, title
	Sort string
	// Order — направление: asc, desc
	Order string
	// State — фильтр состояния трансляции: all, live, done
	State string
}

// mapOrder переводит токен направления в SortDirection.
func mapOrder(token string) (repository.SortDirection, error) {
	switch token {
	case "", "desc":
		return repository.SortDesc, nil
	case "asc":
		return repository.SortAsc, nil
	default:
		return "", fmt.Errorf("%w: неизвестное направление сортировки %q", ErrValidation, token)
	}
}

// mapSort переводит токен ключа сортировки в имя колонки.
func mapSort(token string) (string, error) {
	switch token {
	case "", "time":
		return "created_at", nil
	case "title":
		return "title", nil
	default:
		return "", fmt.Errorf("%w: неизвестный ключ сортировки %q", ErrValidation, token)
	}
}

// mapState переводит токен состояния в предикат liveness.
// nil — без фильтра, true — идущие трансляции, false — завершённые.
func mapState(token string) (*bool, error) {
	switch token {
	case "", "all":
		return nil, nil
	case "live":
		live := true
		return &live, nil
	case "done":
		live := false
		return &live, nil
	default:
		return nil, fmt.Errorf("%w: неизвестное состояние %q", ErrValidation, token)
	}
}

// mapStreamListParams переводит полный набор токенов в параметры
// спискового запроса трансляций.
func mapStreamListParams(p ListParams) (repository.StreamListParams, error) {
	col, err := mapSort(p.Sort)
	if err != nil {
		return repository.StreamListParams{}, err
	}
	dir, err := mapOrder(p.Order)
	if err != nil {
		return repository.StreamListParams{}, err
	}
	live, err := mapState(p.State)
	if err != nil {
		return repository.StreamListParams{}, err
	}
	return repository.StreamListParams{
		SortColumn: col,
		Direction:  dir,
		Live:       live,
	}, nil
}
