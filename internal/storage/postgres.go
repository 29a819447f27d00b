package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
)

type Postgres struct {
	DB     *gorm.DB
	Schema string
}

// NewPostgres connects with the given schema first on the search path, so
// every webhook table lives in its own namespace apart from the main CRM
// schema.
func NewPostgres(dsn, schema string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(withSearchPath(dsn, schema)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Postgres{DB: db, Schema: schema}, nil
}

// withSearchPath adds a search_path runtime parameter to a URL or keyword DSN.
func withSearchPath(dsn, schema string) string {
	if schema == "" {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn) + " search_path=" + schema
}

func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates the webhook schema when missing and migrates every
// table into it.
func (p *Postgres) AutoMigrate() error {
	if p.Schema != "" {
		stmt := fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, p.Schema)
		if err := p.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", p.Schema, err)
		}
	}

	return p.DB.AutoMigrate(
		&models.Inquiry{},
		&models.RecruitInquiry{},
		&models.DeliveryLog{},
		&models.User{},
	)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (p *Postgres) Transaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return p.DB.WithContext(ctx).Transaction(fn)
}
