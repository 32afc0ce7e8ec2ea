package seeders

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"cmms-system/internal/maintenance"
	"cmms-system/pkg/middleware"
)

//go:embed data.yaml
var demoData []byte

type Data struct {
	Settings    SettingsSeed     `yaml:"settings"`
	Users       []UserSeed       `yaml:"users"`
	Technicians []TechnicianSeed `yaml:"technicians"`
	Assets      []AssetSeed      `yaml:"assets"`
	SpareParts  []SparePartSeed  `yaml:"spare_parts"`
	Plans       []PlanSeed       `yaml:"preventive_plans"`
}

type SettingsSeed struct {
	CompanyName           string `yaml:"company_name"`
	TaxID                 string `yaml:"tax_id"`
	PostalCode            string `yaml:"postal_code"`
	Street                string `yaml:"street"`
	District              string `yaml:"district"`
	City                  string `yaml:"city"`
	State                 string `yaml:"state"`
	Currency              string `yaml:"currency"`
	MaintenanceWindowDays int    `yaml:"maintenance_window_days"`
}

type UserSeed struct {
	Fio      string `yaml:"fio"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type TechnicianSeed struct {
	Name       string  `yaml:"name"`
	Specialty  string  `yaml:"specialty"`
	Phone      string  `yaml:"phone"`
	Email      string  `yaml:"email"`
	HourlyRate float64 `yaml:"hourly_rate"`
}

type AssetSeed struct {
	Code            string  `yaml:"code"`
	ParentCode      string  `yaml:"parent_code"`
	Name            string  `yaml:"name"`
	Category        string  `yaml:"category"`
	Location        string  `yaml:"location"`
	Manufacturer    string  `yaml:"manufacturer"`
	Model           string  `yaml:"model"`
	SerialNumber    string  `yaml:"serial_number"`
	Criticality     string  `yaml:"criticality"`
	InstallDate     string  `yaml:"install_date"`
	AcquisitionCost float64 `yaml:"acquisition_cost"`
}

type SparePartSeed struct {
	SKU      string  `yaml:"sku"`
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Quantity int     `yaml:"quantity"`
	MinLevel int     `yaml:"min_level"`
	UnitCost float64 `yaml:"unit_cost"`
	Location string  `yaml:"location"`
	Supplier string  `yaml:"supplier"`
}

type PlanSeed struct {
	Name            string   `yaml:"name"`
	AssetCode       string   `yaml:"asset_code"`
	TechnicianEmail string   `yaml:"technician_email"`
	FrequencyValue  int      `yaml:"frequency_value"`
	FrequencyUnit   string   `yaml:"frequency_unit"`
	EstimatedHours  float64  `yaml:"estimated_hours"`
	Checklist       []string `yaml:"checklist"`
}

// LoadDemoData читает встроенный data.yaml.
func LoadDemoData() (*Data, error) {
	return ParseData(demoData)
}

func ParseData(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("ошибка разбора данных сидера: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate проверяет ссылки между разделами. Родитель актива должен идти раньше потомка.
func (d *Data) Validate() error {
	seen := make(map[string]bool, len(d.Assets))
	for _, a := range d.Assets {
		if a.Code == "" || a.Name == "" {
			return fmt.Errorf("актив без кода или названия: %+v", a)
		}
		if seen[a.Code] {
			return fmt.Errorf("актив %s указан дважды", a.Code)
		}
		if a.ParentCode != "" && !seen[a.ParentCode] {
			return fmt.Errorf("актив %s: родитель %s не объявлен выше", a.Code, a.ParentCode)
		}
		seen[a.Code] = true
	}

	technicians := make(map[string]bool, len(d.Technicians))
	for _, t := range d.Technicians {
		technicians[t.Email] = true
	}

	for _, p := range d.Plans {
		if !seen[p.AssetCode] {
			return fmt.Errorf("план %q: неизвестный актив %s", p.Name, p.AssetCode)
		}
		if p.TechnicianEmail != "" && !technicians[p.TechnicianEmail] {
			return fmt.Errorf("план %q: неизвестный техник %s", p.Name, p.TechnicianEmail)
		}
		if p.FrequencyValue <= 0 {
			return fmt.Errorf("план %q: периодичность должна быть больше нуля", p.Name)
		}
		if !maintenance.FrequencyUnit(p.FrequencyUnit).Valid() {
			return fmt.Errorf("план %q: неизвестная единица периодичности %q", p.Name, p.FrequencyUnit)
		}
	}

	for _, u := range d.Users {
		switch u.Role {
		case middleware.RoleAdmin, middleware.RoleManager, middleware.RoleTechnician:
		default:
			return fmt.Errorf("пользователь %s: неизвестная роль %q", u.Email, u.Role)
		}
	}
	return nil
}
