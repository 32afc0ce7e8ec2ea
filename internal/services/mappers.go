package services

import (
	"time"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/maintenance"
	"cmms-system/pkg/utils"
)

func assetToDTO(a *entities.Asset) dto.AssetDTO {
	return dto.AssetDTO{
		ID:              a.ID,
		Code:            a.Code,
		Name:            a.Name,
		Category:        a.Category,
		Location:        a.Location,
		Manufacturer:    a.Manufacturer,
		Model:           a.Model,
		SerialNumber:    a.SerialNumber,
		ParentID:        a.ParentID,
		Status:          a.Status,
		Criticality:     a.Criticality,
		InstallDate:     utils.FormatDate(a.InstallDate),
		AcquisitionCost: a.AcquisitionCost,
		Description:     a.Description,
		CreatedAt:       utils.FormatTime(a.CreatedAt),
		UpdatedAt:       utils.FormatTime(a.UpdatedAt),
	}
}

func technicianToDTO(t *entities.Technician) dto.TechnicianDTO {
	return dto.TechnicianDTO{
		ID:         t.ID,
		Name:       t.Name,
		Specialty:  t.Specialty,
		Phone:      t.Phone,
		Email:      t.Email,
		HourlyRate: t.HourlyRate,
		Active:     t.Active,
		UserID:     t.UserID,
		CreatedAt:  utils.FormatTime(t.CreatedAt),
	}
}

func ticketToDTO(t *entities.Ticket, parts []entities.TicketPart) dto.TicketDTO {
	res := dto.TicketDTO{
		ID:               t.ID,
		Code:             t.Code,
		Title:            t.Title,
		Description:      t.Description,
		Asset:            dto.ShortAssetDTO{ID: t.AssetID, Code: t.AssetCode, Name: t.AssetName},
		TechnicianID:     t.TechnicianID,
		TechnicianName:   t.TechnicianName,
		PreventivePlanID: t.PreventivePlanID,
		Type:             t.Type,
		Priority:         t.Priority,
		Status:           t.Status,
		OpenedAt:         utils.FormatTime(&t.OpenedAt),
		StartedAt:        utils.FormatTime(t.StartedAt),
		ResolvedAt:       utils.FormatTime(t.ResolvedAt),
		ClosedAt:         utils.FormatTime(t.ClosedAt),
		DowntimeHours:    t.DowntimeHours,
		LaborHours:       t.LaborHours,
		LaborCost:        t.LaborCost,
		PartsCost:        t.PartsCost,
		TotalCost:        utils.RoundTo(t.LaborCost+t.PartsCost, 2),
		Solution:         t.Solution,
		CreatedAt:        utils.FormatTime(t.CreatedAt),
		UpdatedAt:        utils.FormatTime(t.UpdatedAt),
	}
	for _, p := range parts {
		res.Parts = append(res.Parts, dto.TicketPartDTO{
			PartID:   p.PartID,
			SKU:      p.SKU,
			Name:     p.Name,
			Quantity: p.Quantity,
			UnitCost: p.UnitCost,
			LineCost: utils.RoundTo(float64(p.Quantity)*p.UnitCost, 2),
		})
	}
	return res
}

// planToDTO считает срок и для приостановленных планов.
func planToDTO(p *entities.PreventivePlan, now time.Time, window int) dto.PlanDTO {
	res := dto.PlanDTO{
		ID:             p.ID,
		Name:           p.Name,
		Asset:          dto.ShortAssetDTO{ID: p.AssetID, Name: p.AssetName},
		TechnicianID:   p.TechnicianID,
		Description:    p.Description,
		FrequencyValue: p.FrequencyValue,
		FrequencyUnit:  p.FrequencyUnit,
		LastExecution:  utils.FormatDate(p.LastExecution),
		Status:         p.Status,
		EstimatedHours: p.EstimatedHours,
		Checklist:      p.Checklist,
		CreatedAt:      utils.FormatTime(p.CreatedAt),
		UpdatedAt:      utils.FormatTime(p.UpdatedAt),
	}
	if res.Checklist == nil {
		res.Checklist = []string{}
	}
	sched, err := planSchedule(p, now, window)
	if err == nil {
		res.NextDueDate = sched.NextDueDate.Format(utils.DateLayout)
		res.DaysUntilDue = sched.DaysUntilDue
		res.DueState = sched.DueState
	}
	return res
}

func planSchedule(p *entities.PreventivePlan, now time.Time, window int) (maintenance.Schedule, error) {
	var created time.Time
	if p.CreatedAt != nil {
		created = *p.CreatedAt
	}
	return maintenance.ComputeSchedule(p.LastExecution, created, p.FrequencyValue,
		maintenance.FrequencyUnit(p.FrequencyUnit), now, window)
}

func partToDTO(p *entities.SparePart) dto.PartDTO {
	res := dto.PartDTO{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Category:   p.Category,
		Quantity:   p.Quantity,
		MinLevel:   p.MinLevel,
		UnitCost:   p.UnitCost,
		StockValue: utils.RoundTo(float64(p.Quantity)*p.UnitCost, 2),
		Location:   p.Location,
		Supplier:   p.Supplier,
		LowStock:   maintenance.IsLowStock(p.Quantity, p.MinLevel),
		UpdatedAt:  utils.FormatTime(p.UpdatedAt),
	}
	if res.LowStock {
		res.SuggestedQuantity = maintenance.SuggestRestockQuantity(p.MinLevel, p.Quantity)
	}
	return res
}

func movementToDTO(m *entities.StockMovement) dto.StockMovementDTO {
	return dto.StockMovementDTO{
		ID:            m.ID,
		PartID:        m.PartID,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Reason:        m.Reason,
		TicketID:      m.TicketID,
		RequisitionID: m.RequisitionID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     utils.FormatTime(m.CreatedAt),
	}
}

func requisitionToDTO(r *entities.Requisition) dto.RequisitionDTO {
	res := dto.RequisitionDTO{
		ID:        r.ID,
		Code:      r.Code,
		Status:    r.Status,
		TotalCost: r.TotalCost,
		Notes:     r.Notes,
		CreatedBy: r.CreatedBy,
		Items:     make([]dto.RequisitionItemDTO, 0, len(r.Items)),
		CreatedAt: utils.FormatTime(r.CreatedAt),
		UpdatedAt: utils.FormatTime(r.UpdatedAt),
	}
	for _, it := range r.Items {
		res.Items = append(res.Items, dto.RequisitionItemDTO{
			PartID:   it.PartID,
			SKU:      it.SKU,
			Name:     it.Name,
			Quantity: it.Quantity,
			UnitCost: it.UnitCost,
			LineCost: utils.RoundTo(float64(it.Quantity)*it.UnitCost, 2),
		})
	}
	return res
}

func settingsToDTO(s *entities.SystemSettings, aiAvailable bool) dto.SettingsDTO {
	return dto.SettingsDTO{
		CompanyName:           s.CompanyName,
		TaxID:                 s.TaxID,
		PostalCode:            s.PostalCode,
		Street:                s.Street,
		District:              s.District,
		City:                  s.City,
		State:                 s.State,
		Currency:              s.Currency,
		AIEnabled:             s.AIEnabled,
		AIAvailable:           aiAvailable,
		MaintenanceWindowDays: s.MaintenanceWindowDays,
		UpdatedAt:             utils.FormatTime(s.UpdatedAt),
	}
}

func userToPublicDTO(u *entities.User) dto.UserPublicDTO {
	return dto.UserPublicDTO{ID: u.ID, Email: u.Email, FIO: u.Fio, Role: u.Role, IsActive: u.IsActive}
}
