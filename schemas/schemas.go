// Package schemas встраивает JSON-схемы сообщений и запросов сервиса.
package schemas

import "embed"

//go:embed contracts
var SchemasFS embed.FS
