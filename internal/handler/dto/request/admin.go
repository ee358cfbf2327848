package request

import (
	"strings"
	"time"

	"shuttlecourt/internal/pkg/ptr"
	"shuttlecourt/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateCourtRequest struct {
	Name           string     `json:"name" binding:"required"`
	AreaID         *uuid.UUID `json:"area_id,omitempty"`
	Status         string     `json:"status" binding:"omitempty,oneof=open maintenance closed"`
	LateFeePercent float64    `json:"late_fee_percent" binding:"min=0,max=100"`
}

func (r CreateCourtRequest) ToParams() commands.CreateCourtParams {
	status := r.Status
	if status == "" {
		status = "open"
	}
	return commands.CreateCourtParams{
		Name:           strings.TrimSpace(r.Name),
		AreaID:         r.AreaID,
		Status:         status,
		LateFeePercent: r.LateFeePercent,
	}
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=customer staff admin"`
}

func (r CreateUserRequest) ToParams() commands.CreateUserParams {
	return commands.CreateUserParams{
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Name:     strings.TrimSpace(r.Name),
		Role:     r.Role,
	}
}

type CreateRuleRequest struct {
	Days        []int `json:"days" binding:"required,min=1,dive,min=0,max=6"`
	StartMinute int   `json:"start_minute" binding:"min=0,max=1440"`
	EndMinute   int   `json:"end_minute" binding:"required,min=1,max=1440"`
	RatePerHour int64 `json:"rate_per_hour" binding:"required,min=1"`
	Priority    int   `json:"priority"`
}

func (r CreateRuleRequest) ToParams(courtID uuid.UUID) commands.CreateRuleParams {
	days := make([]time.Weekday, len(r.Days))
	for i, d := range r.Days {
		days[i] = time.Weekday(d)
	}
	return commands.CreateRuleParams{
		CourtID:     courtID,
		Days:        days,
		StartMinute: r.StartMinute,
		EndMinute:   r.EndMinute,
		RatePerHour: r.RatePerHour,
		Priority:    r.Priority,
	}
}

type VoucherTimeRuleRequest struct {
	DayOfWeek    *int       `json:"day_of_week,omitempty" binding:"omitempty,min=0,max=6"`
	SpecificDate *time.Time `json:"specific_date,omitempty"`
	StartMinute  *int       `json:"start_minute,omitempty" binding:"omitempty,min=0,max=1440"`
	EndMinute    *int       `json:"end_minute,omitempty" binding:"omitempty,min=0,max=1440"`
}

type VoucherUserRuleRequest struct {
	NewCustomer  *bool       `json:"new_customer,omitempty"`
	MembershipID *uuid.UUID  `json:"membership_id,omitempty"`
	CustomerIDs  []uuid.UUID `json:"customer_ids,omitempty"`
}

type CreateVoucherRequest struct {
	Code              string                   `json:"code" binding:"required"`
	DiscountType      string                   `json:"discount_type" binding:"required,oneof=fixed percentage"`
	DiscountValue     int64                    `json:"discount_value" binding:"min=0"`
	DiscountPercent   float64                  `json:"discount_percent" binding:"min=0,max=100"`
	MaxDiscount       *int64                   `json:"max_discount,omitempty" binding:"omitempty,min=1"`
	MinOrderValue     int64                    `json:"min_order_value" binding:"min=0"`
	StartAt           time.Time                `json:"start_at" binding:"required"`
	EndAt             time.Time                `json:"end_at" binding:"required"`
	UsageLimitTotal   int                      `json:"usage_limit_total" binding:"min=0"`
	UsageLimitPerUser int                      `json:"usage_limit_per_user" binding:"min=0"`
	TimeRules         []VoucherTimeRuleRequest `json:"time_rules,omitempty" binding:"omitempty,dive"`
	UserRules         []VoucherUserRuleRequest `json:"user_rules,omitempty" binding:"omitempty,dive"`
}

func (r CreateVoucherRequest) ToParams() commands.CreateVoucherParams {
	timeRules := make([]commands.VoucherTimeRuleParams, len(r.TimeRules))
	for i, tr := range r.TimeRules {
		var day *time.Weekday
		if tr.DayOfWeek != nil {
			day = ptr.To(time.Weekday(*tr.DayOfWeek))
		}
		timeRules[i] = commands.VoucherTimeRuleParams{
			DayOfWeek:    day,
			SpecificDate: tr.SpecificDate,
			StartMinute:  tr.StartMinute,
			EndMinute:    tr.EndMinute,
		}
	}
	userRules := make([]commands.VoucherUserRuleParams, len(r.UserRules))
	for i, ur := range r.UserRules {
		userRules[i] = commands.VoucherUserRuleParams{
			NewCustomer:  ur.NewCustomer,
			MembershipID: ur.MembershipID,
			CustomerIDs:  ur.CustomerIDs,
		}
	}
	return commands.CreateVoucherParams{
		Code:              strings.ToUpper(strings.TrimSpace(r.Code)),
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		DiscountPercent:   r.DiscountPercent,
		MaxDiscount:       r.MaxDiscount,
		MinOrderValue:     r.MinOrderValue,
		StartAt:           r.StartAt,
		EndAt:             r.EndAt,
		UsageLimitTotal:   r.UsageLimitTotal,
		UsageLimitPerUser: r.UsageLimitPerUser,
		TimeRules:         timeRules,
		UserRules:         userRules,
	}
}
