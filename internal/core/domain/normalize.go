package domain

import (
	"crypto/md5"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	priceJunkRe   = regexp.MustCompile(`[^\d.,]`)
	surfaceRe     = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:m[²2]|metros)`)
	firstNumberRe = regexp.MustCompile(`\d+`)
)

// CleanPrice разбирает строку цены источника ("250.000 €", "150,000€") в число.
// Разделители тысяч и десятичные в европейской и американской записи
// различаются по позиции и длине хвоста. nil - цену разобрать не удалось.
func CleanPrice(raw string) *float64 {
	if raw == "" {
		return nil
	}

	cleaned := priceJunkRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")

	switch {
	case hasDot && hasComma:
		// Смешанный формат: десятичный разделитель - тот, что правее
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	case hasDot:
		// Несколько точек либо хвост из трёх цифр - это разделители тысяч
		if strings.Count(cleaned, ".") > 1 || lastGroupLen(cleaned, ".") == 3 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	case hasComma:
		if strings.Count(cleaned, ",") > 1 || lastGroupLen(cleaned, ",") == 3 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

func lastGroupLen(s, sep string) int {
	parts := strings.Split(s, sep)
	return len(parts[len(parts)-1])
}

// CleanSurface извлекает площадь в м² из строк вида "85 m²", "120m2".
func CleanSurface(raw string) *float64 {
	if raw == "" {
		return nil
	}

	if m := surfaceRe.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err == nil {
			return &value
		}
	}

	// Запасной вариант: первое число в строке
	if m := firstNumberRe.FindString(raw); m != "" {
		value, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return &value
		}
	}

	return nil
}

// CleanRoomCount извлекает число комнат из строк вида "3 hab", "2 dormitorios".
func CleanRoomCount(raw string) *int {
	if raw == "" {
		return nil
	}
	if m := firstNumberRe.FindString(raw); m != "" {
		value, err := strconv.Atoi(m)
		if err == nil {
			return &value
		}
	}
	return nil
}

// ExternalIDFromURL выводит стабильный ID объявления для источников,
// не отдающих собственный идентификатор. URL объявления на портале
// неизменен, поэтому хэш от пары источник:URL постоянен между прогонами.
func ExternalIDFromURL(source, url string) string {
	sum := md5.Sum([]byte(source + ":" + url))
	return fmt.Sprintf("%x", sum)[:16]
}

var slugTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify готовит название города/провинции для подстановки в URL источника:
// нижний регистр, снятые диакритики, пробелы заменены дефисами
// ("Alcalá de Henares" -> "alcala-de-henares").
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	folded, _, err := transform.String(slugTransformer, text)
	if err == nil {
		text = folded
	}

	return strings.Join(strings.Fields(text), "-")
}
