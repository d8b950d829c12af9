package service

import (
	"strings"
)

// TitleMatches проверяет, что каждое слово поисковой фразы входит в название
// как подстрока. Сравнение регистрозависимое, без нормализации.
//
// Поиск Gutendex сопоставляет фразу и с названием, и с автором, поэтому
// выдача дополнительно фильтруется на нашей стороне, чтобы получить
// семантику "только по названию"
func TitleMatches(title string, searchPhrase string) bool {
	for _, term := range strings.Fields(searchPhrase) {
		if !strings.Contains(title, term) {
			return false
		}
	}

	return true
}
