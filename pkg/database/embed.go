package database

import "embed"

// MigrationFS 嵌入的版本化迁移脚本
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
