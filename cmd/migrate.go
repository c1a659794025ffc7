package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anoixa/art-gallery/database/models"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Migrate data from one database to another (e.g., SQLite to PostgreSQL).`,
}

// migrateRunCmd 执行迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run database migration",
	Long: `Run database migration from source to target database.

Examples:
  # Migrate from SQLite to PostgreSQL
  art-gallery migrate run --from-sqlite ./data.db --to-postgres "host=localhost user=postgres password=secret dbname=gallery port=5432"

  # Stop on conflict instead of skipping
  art-gallery migrate run --from-sqlite ./data.db --to-postgres "..." --on-conflict=error`,
	Run: func(cmd *cobra.Command, args []string) {
		fromType, _ := cmd.Flags().GetString("from-type")
		toType, _ := cmd.Flags().GetString("to-type")
		fromDSN, _ := cmd.Flags().GetString("from-dsn")
		toDSN, _ := cmd.Flags().GetString("to-dsn")
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		skipConfirm, _ := cmd.Flags().GetBool("yes")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		if err := runMigration(fromType, toType, fromDSN, toDSN, fromSQLite, toPostgres, skipConfirm, batchSize, onConflict); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateRunCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path (shortcut)")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string (shortcut)")
	migrateRunCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateRunCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), error")
}

// migrateStats 迁移统计
type migrateStats struct {
	rows    map[string]int
	skipped int
	errors  []string
}

// runMigration 执行数据库迁移
func runMigration(fromType, toType, fromDSN, toDSN, fromSQLite, toPostgres string, skipConfirm bool, batchSize int, onConflict string) error {
	if onConflict != "skip" && onConflict != "error" {
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip or error)", onConflict)
	}

	// 处理快捷方式参数
	if fromSQLite != "" {
		fromType = "sqlite"
		fromDSN = fromSQLite
	}
	if toPostgres != "" {
		toType = "postgres"
		toDSN = toPostgres
	}

	if fromType == "" || toType == "" {
		return fmt.Errorf("both --from-type and --to-type are required")
	}
	if fromDSN == "" || toDSN == "" {
		return fmt.Errorf("both --from-dsn and --to-dsn (or shortcuts) are required")
	}
	if fromType == toType && fromDSN == toDSN {
		return fmt.Errorf("source and target databases are the same")
	}

	log.Printf("Migrating from %s to %s", fromType, toType)
	log.Printf("Source: %s", maskDSN(fromDSN))
	log.Printf("Target: %s", maskDSN(toDSN))
	log.Printf("Conflict strategy: %s", onConflict)

	sourceDB, err := openDatabase(fromType, fromDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	if sqlDB, err := sourceDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	targetDB, err := openDatabase(toType, toDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	if sqlDB, err := targetDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	if !skipConfirm {
		fmt.Println("\nWarning: This will migrate all data from source to target database.")
		fmt.Printf("Conflict resolution strategy: %s\n", onConflict)
		fmt.Print("Do you want to continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Migration cancelled.")
			return nil
		}
	}

	log.Println("Migrating database schema...")
	err = targetDB.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Artwork{},
		&models.Gallery{},
		&models.GalleryArtwork{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	stats := &migrateStats{rows: make(map[string]int)}
	ctx := context.Background()

	// 按外键依赖顺序迁移
	steps := []struct {
		name string
		run  func() error
	}{
		{"users", func() error {
			return migrateTable[models.User](ctx, sourceDB, targetDB, stats, "users", batchSize, onConflict)
		}},
		{"tags", func() error {
			return migrateTable[models.Tag](ctx, sourceDB, targetDB, stats, "tags", batchSize, onConflict)
		}},
		{"artworks", func() error {
			return migrateTable[models.Artwork](ctx, sourceDB, targetDB, stats, "artworks", batchSize, onConflict)
		}},
		{"galleries", func() error {
			return migrateTable[models.Gallery](ctx, sourceDB, targetDB, stats, "galleries", batchSize, onConflict)
		}},
		{"artwork_tags", func() error {
			return migrateJoinTable(ctx, sourceDB, targetDB, stats, "artwork_tags", batchSize)
		}},
		{"gallery_artworks", func() error {
			return migrateTable[models.GalleryArtwork](ctx, sourceDB, targetDB, stats, "gallery_artworks", batchSize, onConflict)
		}},
	}

	for _, step := range steps {
		log.Printf("Migrating %s...", step.name)
		if err := step.run(); err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("%s migration failed: %v", step.name, err))
			if onConflict == "error" {
				return err
			}
		}
	}

	printMigrateStats(stats)

	if len(stats.errors) > 0 {
		return fmt.Errorf("migration completed with %d errors", len(stats.errors))
	}

	log.Println("Migration completed successfully!")
	return nil
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// migrateTable 按批迁移一张表，主键已存在的记录按策略跳过或报错
func migrateTable[T any](ctx context.Context, sourceDB, targetDB *gorm.DB, stats *migrateStats, table string, batchSize int, onConflict string) error {
	offset := 0
	for {
		var rows []T
		if err := sourceDB.WithContext(ctx).Table(table).Limit(batchSize).Offset(offset).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for i := range rows {
			result := targetDB.WithContext(ctx).Table(table).Create(&rows[i])
			if result.Error != nil {
				if isDuplicateError(result.Error) {
					if onConflict == "error" {
						return fmt.Errorf("record already exists in %s: %w", table, result.Error)
					}
					stats.skipped++
					continue
				}
				stats.errors = append(stats.errors, fmt.Sprintf("failed to migrate %s row: %v", table, result.Error))
				continue
			}
			stats.rows[table]++
		}

		offset += batchSize
	}
}

// migrateJoinTable 迁移无模型的关联表
func migrateJoinTable(ctx context.Context, sourceDB, targetDB *gorm.DB, stats *migrateStats, table string, batchSize int) error {
	offset := 0
	for {
		var rows []map[string]interface{}
		if err := sourceDB.WithContext(ctx).Table(table).Limit(batchSize).Offset(offset).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			if err := targetDB.WithContext(ctx).Table(table).Create(row).Error; err != nil {
				if isDuplicateError(err) {
					stats.skipped++
					continue
				}
				stats.errors = append(stats.errors, fmt.Sprintf("failed to migrate %s row: %v", table, err))
				continue
			}
			stats.rows[table]++
		}

		offset += batchSize
	}
}

// isDuplicateError 判断是否为主键或唯一索引冲突
func isDuplicateError(err error) bool {
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique") || strings.Contains(message, "duplicate")
}

// maskDSN 隐藏 DSN 中的密码
func maskDSN(dsn string) string {
	fields := strings.Fields(dsn)
	for i, field := range fields {
		if strings.HasPrefix(field, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}

// printMigrateStats 打印迁移统计
func printMigrateStats(stats *migrateStats) {
	log.Println("Migration summary:")
	for table, count := range stats.rows {
		log.Printf("  %-18s %d rows", table, count)
	}
	if stats.skipped > 0 {
		log.Printf("  skipped existing    %d rows", stats.skipped)
	}
	for _, e := range stats.errors {
		log.Printf("  error: %s", e)
	}
}
