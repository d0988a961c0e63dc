package domain

import "strings"

// Genre は脚色先のジャンルを表します。値は画面に表示するラベルそのものです。
type Genre string

const (
	GenreHorror           Genre = "Horror"
	GenreComedy           Genre = "Comedy"
	GenreTeenRomance      Genre = "Teen Romance"
	GenreThriller         Genre = "Thriller"
	GenreDrama            Genre = "Drama"
	GenreScienceFiction   Genre = "Science Fiction"
	GenreMystery          Genre = "Mystery"
	GenreActionAdventure  Genre = "Action/Adventure"
	GenreFantasy          Genre = "Fantasy"
	GenreDocumentaryStyle Genre = "Documentary-Style"
	GenreMusical          Genre = "Musical"
	GenreNoir             Genre = "Noir"
	GenreSatire           Genre = "Satire"
	GenreComingOfAge      Genre = "Coming-of-Age"
)

// genres はセレクトボックスの表示順を兼ねます。
var genres = []Genre{
	GenreHorror,
	GenreComedy,
	GenreTeenRomance,
	GenreThriller,
	GenreDrama,
	GenreScienceFiction,
	GenreMystery,
	GenreActionAdventure,
	GenreFantasy,
	GenreDocumentaryStyle,
	GenreMusical,
	GenreNoir,
	GenreSatire,
	GenreComingOfAge,
}

// Genres は選択可能な全ジャンルを表示順で返します。
func Genres() []Genre {
	out := make([]Genre, len(genres))
	copy(out, genres)
	return out
}

// ParseGenre は入力値をジャンルに変換します。前後の空白のみ許容し、ラベルは完全一致で判定します。
func ParseGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	for _, g := range genres {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

func (g Genre) String() string {
	return string(g)
}
