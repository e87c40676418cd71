// Определяет политики очистки HTML постов, импортируемых из старого редактора. Политики применяются к различным элементам DOM и обеспечивают контроль над разрешенными атрибутами и стилями, чтобы предотвратить XSS и не потерять разметку, которую понимает импорт.
//
// Основные возможности:
//   - Разрешение атрибутов, из которых импорт восстанавливает ноды (якоря заголовков, callout, язык кода, размеры изображений).
//   - Ограничение допустимых значений атрибутов с помощью регулярных выражений.
//   - Замена упоминаний пользователей (span data-type="mention") текстом до очистки.
//   - Использование pre-определенной политики UGCPolicy в качестве основы.
package policy

import (
	"container/list"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/microcosm-cc/bluemonday"
)

// ImportPolicy - политика для HTML, из которого строится документ.
var ImportPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	calloutDivAttrs := []string{
		"data-title",
		"data-info-block",
	}

	calloutRegexp := regexp.MustCompile(`^[a-z]{1,32}$`)
	anchorRegexp := regexp.MustCompile(`^[\p{L}\p{N}_-]{1,128}$`)
	sizeRegexp := regexp.MustCompile(`^(\d+(px|%)?|auto)$`)
	alignRegexp := regexp.MustCompile(`^(right|left|center)$`)
	languageRegexp := regexp.MustCompile(`^language-[\w+#-]{1,32}$`)
	targetRegexp := regexp.MustCompile(`^_(blank|self|parent|top)$`)

	ImportPolicy.AllowAttrs("id").Matching(anchorRegexp).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	ImportPolicy.AllowAttrs("data-callout").Matching(calloutRegexp).OnElements("div")
	ImportPolicy.AllowAttrs(calloutDivAttrs...).OnElements("div")
	ImportPolicy.AllowAttrs("class").Matching(languageRegexp).OnElements("code", "pre")
	ImportPolicy.AllowAttrs("data-language").Matching(calloutRegexp).OnElements("pre")
	ImportPolicy.AllowAttrs("target").Matching(targetRegexp).OnElements("a")
	ImportPolicy.AllowAttrs("width", "height").Matching(sizeRegexp).OnElements("img")
	ImportPolicy.AllowAttrs("data-align").Matching(alignRegexp).OnElements("img")
	ImportPolicy.AllowAttrs("data-type").Matching(regexp.MustCompile(`^[a-zA-Z]{1,32}$`)).OnElements("div")
	ImportPolicy.AllowAttrs("data-src").OnElements("div")

	ImportPolicy.AllowStyles("float").Matching(alignRegexp).OnElements("img")
	ImportPolicy.AllowStyles("width", "height").Matching(sizeRegexp).OnElements("img")

	ImportPolicy.RequireNoFollowOnLinks(false)
}

// ProcessMentions заменяет упоминания пользователей (span data-type="mention") текстом "@label".
// Политика очистки удаляет data-атрибуты span, поэтому замена выполняется до неё.
func ProcessMentions(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	queue := list.New()
	queue.PushBack(doc)

	for queue.Len() > 0 {
		element := queue.Front()
		queue.Remove(element)
		node := element.Value.(*html.Node)

		var next *html.Node

		for child := node.FirstChild; child != nil; child = next {
			next = child.NextSibling
			if child.Type == html.ElementNode && child.Data == "span" && isMention(child) {
				processMentionNode(child)
			} else {
				if child.FirstChild != nil {
					queue.PushBack(child)
				}
			}
		}
	}

	var result strings.Builder
	html.Render(&result, doc)

	return result.String()
}

func isMention(node *html.Node) bool {
	for _, attr := range node.Attr {
		if attr.Key == "data-type" && attr.Val == "mention" {
			return true
		}
	}
	return false
}

func processMentionNode(node *html.Node) {
	var label string

	for _, attr := range node.Attr {
		switch attr.Key {
		case "data-label":
			label = attr.Val
		case "data-id":
			if label == "" {
				label = attr.Val
			}
		}
	}

	if label != "" {
		textNode := &html.Node{
			Type: html.TextNode,
			Data: "@" + strings.TrimPrefix(label, "@"),
		}

		node.Parent.InsertBefore(textNode, node)
		node.Parent.RemoveChild(node)
	}
}

// Sanitize подготавливает HTML к импорту: упоминания заменяются текстом, запрещенная разметка удаляется.
func Sanitize(htmlContent string) string {
	return ImportPolicy.Sanitize(ProcessMentions(htmlContent))
}
