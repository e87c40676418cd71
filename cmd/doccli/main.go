// Утилита пакетной обработки документов: сжатие, восстановление, оглавление, оценка, импорт HTML и экспорт в Markdown и PDF.
// Файлы из аргументов обрабатываются параллельно, результаты печатаются в порядке аргументов.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
