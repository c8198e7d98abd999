package query

import "strings"

// layoutSwap maps keys typed on the QWERTY layout to the ЙЦУКЕН letters on
// the same physical keys.
var layoutSwap = strings.NewReplacer(
	"q", "й", "w", "ц", "e", "у", "r", "к", "t", "е", "y", "н", "u", "г",
	"i", "ш", "o", "щ", "p", "з", "[", "х", "]", "ъ", "a", "ф", "s", "ы",
	"d", "в", "f", "а", "g", "п", "h", "р", "j", "о", "k", "л", "l", "д",
	";", "ж", "'", "э", "z", "я", "x", "ч", "c", "с", "v", "м", "b", "и",
	"n", "т", "m", "ь", ",", "б", ".", "ю",
	"Q", "Й", "W", "Ц", "E", "У", "R", "К", "T", "Е", "Y", "Н", "U", "Г",
	"I", "Ш", "O", "Щ", "P", "З", "{", "Х", "}", "Ъ", "A", "Ф", "S", "Ы",
	"D", "В", "F", "А", "G", "П", "H", "Р", "J", "О", "K", "Л", "L", "Д",
	":", "Ж", `"`, "Э", "Z", "Я", "X", "Ч", "C", "С", "V", "М", "B", "И",
	"N", "Т", "M", "Ь", "<", "Б", ">", "Ю",
)

// Transliterate rewrites text typed with the wrong keyboard layout
// ("abkmnh" becomes "фильтр"). Cyrillic input passes through unchanged.
func Transliterate(text string) string {
	return layoutSwap.Replace(text)
}
