// Package categories owns the active, versioned set of letter classification
// categories. The set is replaced atomically. Retired sets are kept for history,
// and every replacement invalidates the analysis that depended on the old set.
package categories

import "time"

const (
	MinCategories = 2
	MaxCategories = 9
)

// Category is one entry of the active set. Numbers run 1..N without gaps.
type Category struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Choice is the compact (number, name) view used by forms and normalization.
type Choice struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// RetiredSet is a previously active set, identified by its version.
type RetiredSet struct {
	Version    int        `json:"version"`
	RetiredAt  time.Time  `json:"retired_at"`
	Categories []Category `json:"categories"`
}

// ReplaceCommand carries a new set. Confirm must be true because replacing
// the set resets every non-archived letter.
type ReplaceCommand struct {
	Categories []Category `json:"categories"`
	Confirm    bool       `json:"confirm"`
}

// ResetCommand restores the base categories. Confirm must be true.
type ResetCommand struct {
	Confirm bool `json:"confirm"`
}

// Defaults returns the base category set.
func Defaults() []Category {
	return []Category{
		{Number: 1, Name: "Запрос информации/документов", Description: "Запросы на предоставление справок, выписок, копий документов и сведений."},
		{Number: 2, Name: "Официальная жалоба или претензия", Description: "Жалобы клиентов и претензии на качество обслуживания или действия банка."},
		{Number: 3, Name: "Регуляторный запрос", Description: "Запросы и предписания надзорных и государственных органов."},
		{Number: 4, Name: "Партнёрское предложение", Description: "Предложения о сотрудничестве, совместных проектах и партнёрских программах."},
		{Number: 5, Name: "Запрос на согласование", Description: "Просьбы согласовать условия, документы или действия."},
		{Number: 6, Name: "Уведомление или информирование", Description: "Уведомления, не требующие действий, и информационные сообщения."},
		{Number: 7, Name: "Разное", Description: "Письма, не подходящие ни под одну другую категорию."},
	}
}

// ChoicesOf projects a set onto its compact view.
func ChoicesOf(cats []Category) []Choice {
	out := make([]Choice, len(cats))
	for i, c := range cats {
		out[i] = Choice{Number: c.Number, Name: c.Name}
	}
	return out
}

// NameOf returns the name for number in cats, or "" when it is not present.
func NameOf(cats []Category, number int) string {
	for _, c := range cats {
		if c.Number == number {
			return c.Name
		}
	}
	return ""
}
