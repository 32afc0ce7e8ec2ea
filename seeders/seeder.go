package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/pkg/middleware"
	"cmms-system/pkg/utils"
)

type Seeder struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func New(db *pgxpool.Pool, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// SeedAdmin создаёт администратора, если пользователя с таким email ещё нет.
func (s *Seeder) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("не заданы email или пароль администратора")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO users (fio, email, password_hash, role) VALUES ($1, $2, $3, $4) ON CONFLICT (email) DO NOTHING`,
		"Администратор", email, hash, middleware.RoleAdmin,
	)
	if err != nil {
		return fmt.Errorf("не удалось создать администратора: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Info("Администратор уже существует, пропускаем", zap.String("email", email))
		return nil
	}
	s.logger.Info("✅ Администратор создан", zap.String("email", email))
	return nil
}

// SeedDemo наполняет БД демонстрационными данными одной транзакцией. Повторный запуск ничего не дублирует.
func (s *Seeder) SeedDemo(ctx context.Context, data *Data) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	steps := []struct {
		name string
		fn   func(context.Context, pgx.Tx, *Data) error
	}{
		{"настройки", s.seedSettings},
		{"пользователи", s.seedUsers},
		{"техники", s.seedTechnicians},
		{"активы", s.seedAssets},
		{"запчасти", s.seedSpareParts},
		{"планы ТО", s.seedPlans},
	}
	for _, step := range steps {
		s.logger.Info("▶️  Наполнение", zap.String("section", step.name))
		if err := step.fn(ctx, tx, data); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}
	s.logger.Info("✅ Демонстрационные данные загружены")
	return nil
}

func (s *Seeder) seedSettings(ctx context.Context, tx pgx.Tx, data *Data) error {
	st := data.Settings
	_, err := tx.Exec(ctx, `
		UPDATE system_settings SET company_name = $1, tax_id = $2, postal_code = $3, street = $4, district = $5,
			city = $6, state = $7, currency = $8, maintenance_window_days = $9, updated_at = NOW()
		WHERE id = 1 AND company_name = ''`,
		st.CompanyName, st.TaxID, st.PostalCode, st.Street, st.District, st.City, st.State, st.Currency, st.MaintenanceWindowDays,
	)
	return err
}

func (s *Seeder) seedUsers(ctx context.Context, tx pgx.Tx, data *Data) error {
	for _, u := range data.Users {
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (fio, email, password_hash, role) VALUES ($1, $2, $3, $4) ON CONFLICT (email) DO NOTHING`,
			u.Fio, u.Email, hash, u.Role,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedTechnicians(ctx context.Context, tx pgx.Tx, data *Data) error {
	for _, t := range data.Technicians {
		_, err := tx.Exec(ctx, `
			INSERT INTO technicians (name, specialty, phone, email, hourly_rate, user_id)
			SELECT $1, $2, $3, $4, $5, (SELECT id FROM users WHERE email = $4)
			WHERE NOT EXISTS (SELECT 1 FROM technicians WHERE email = $4)`,
			t.Name, t.Specialty, t.Phone, t.Email, t.HourlyRate,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedAssets(ctx context.Context, tx pgx.Tx, data *Data) error {
	for _, a := range data.Assets {
		var installDate *string
		if a.InstallDate != "" {
			installDate = &a.InstallDate
		}
		criticality := a.Criticality
		if criticality == "" {
			criticality = "medium"
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO assets (code, parent_id, name, category, location, manufacturer, model, serial_number,
				criticality, install_date, acquisition_cost)
			VALUES ($1, (SELECT id FROM assets WHERE code = NULLIF($2, '')), $3, $4, $5, $6, $7, $8, $9, $10::date, $11)
			ON CONFLICT (code) DO NOTHING`,
			a.Code, a.ParentCode, a.Name, a.Category, a.Location, a.Manufacturer, a.Model, a.SerialNumber,
			criticality, installDate, a.AcquisitionCost,
		)
		if err != nil {
			return fmt.Errorf("актив %s: %w", a.Code, err)
		}
	}
	return nil
}

func (s *Seeder) seedSpareParts(ctx context.Context, tx pgx.Tx, data *Data) error {
	for _, p := range data.SpareParts {
		var partID uint64
		err := tx.QueryRow(ctx, `
			INSERT INTO spare_parts (sku, name, category, quantity, min_level, unit_cost, location, supplier)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (sku) DO NOTHING
			RETURNING id`,
			p.SKU, p.Name, p.Category, p.Quantity, p.MinLevel, p.UnitCost, p.Location, p.Supplier,
		).Scan(&partID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("запчасть %s: %w", p.SKU, err)
		}
		if p.Quantity > 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO stock_movements (part_id, delta, quantity_after, reason) VALUES ($1, $2, $2, $3)`,
				partID, p.Quantity, "Начальный остаток",
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPlans(ctx context.Context, tx pgx.Tx, data *Data) error {
	for _, p := range data.Plans {
		checklist := p.Checklist
		if checklist == nil {
			checklist = []string{}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO preventive_plans (name, asset_id, technician_id, frequency_value, frequency_unit, estimated_hours, checklist)
			SELECT $1, a.id, (SELECT id FROM technicians WHERE email = NULLIF($3, '')), $4, $5, $6, $7
			FROM assets a
			WHERE a.code = $2
				AND NOT EXISTS (SELECT 1 FROM preventive_plans pp WHERE pp.name = $1 AND pp.asset_id = a.id)`,
			p.Name, p.AssetCode, p.TechnicianEmail, p.FrequencyValue, p.FrequencyUnit, p.EstimatedHours, checklist,
		)
		if err != nil {
			return fmt.Errorf("план %q: %w", p.Name, err)
		}
	}
	return nil
}
