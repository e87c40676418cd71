package compact

import (
	"regexp"
	"strings"
)

var imageExtReg = regexp.MustCompile(`(?i)\.(webp|gif|jpe?g|png|svg|avif)(?:\?|$)`)

// ImageInfo - сведения об изображении, выведенные из URL.
type ImageInfo struct {
	Format   string `json:"format,omitempty"`
	Animated bool   `json:"animated"`
}

// InspectImage определяет формат и признак анимации изображения по тексту URL, без сетевых запросов.
// Анимированным считается gif, а также любой URL, содержащий "anim" в любом регистре.
func InspectImage(url string) ImageInfo {
	var info ImageInfo

	if match := imageExtReg.FindStringSubmatch(url); match != nil {
		info.Format = strings.ToLower(match[1])
		if info.Format == "jpeg" {
			info.Format = "jpg"
		}
	}

	// "animated" содержит "anim", отдельная проверка не нужна
	info.Animated = info.Format == "gif" || strings.Contains(strings.ToLower(url), "anim")
	return info
}
