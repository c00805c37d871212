// Package schemas содержит JSON-схемы контрактов сервиса: события,
// публикуемые в очереди, и формат файла поисковых профилей.
package schemas

import "embed"

//go:embed events config
var SchemasFS embed.FS
