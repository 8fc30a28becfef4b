// internal/domain/user/admin_service.go
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/pkg/email"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db           *gorm.DB
	config       *config.Config
	emailService *email.EmailService
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:           db,
		config:       cfg,
		emailService: email.NewEmailService(cfg),
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page            int    `form:"page,default=1"`
	Limit           int    `form:"limit,default=20"`
	Search          string `form:"search"`
	Status          string `form:"status"`           // active, inactive, all
	Role            string `form:"role"`             // admin, user, all
	WholesaleStatus string `form:"wholesale_status"` // none, pending, approved, rejected
	SortBy          string `form:"sort_by,default=created_at"`
	SortOrder       string `form:"sort_order,default=desc"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []UserWithStats `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// UserWithStats represents user with additional statistics
type UserWithStats struct {
	User
	OrderCount   int64      `json:"order_count"`
	TotalSpent   int64      `json:"total_spent"` // In cents
	LastOrderAt  *time.Time `json:"last_order_at"`
	AddressCount int        `json:"address_count"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive bool   `json:"is_active"`
	Reason   string `json:"reason,omitempty"`
}

// WholesaleReviewRequest represents an approve/reject decision on a
// pending wholesale application
type WholesaleReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	query := s.db.Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(company_name) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm,
		)
	}

	if req.Status != "" && req.Status != "all" {
		query = query.Where("is_active = ?", req.Status == "active")
	}

	if req.Role != "" && req.Role != "all" {
		query = query.Where("is_admin = ?", req.Role == "admin")
	}

	if req.WholesaleStatus != "" && req.WholesaleStatus != "all" {
		query = query.Where("wholesale_status = ?", req.WholesaleStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	orderClause := req.SortBy
	if req.SortOrder == "desc" {
		orderClause += " DESC"
	} else {
		orderClause += " ASC"
	}
	query = query.Order(orderClause)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	var usersWithStats []UserWithStats
	for _, u := range users {
		userStats, err := s.getUserStats(u.ID)
		if err != nil {
			userStats = &UserWithStats{}
		}
		userStats.User = u
		userStats.User.Password = ""
		usersWithStats = append(usersWithStats, *userStats)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &UserListResponse{
		Users:      usersWithStats,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID with stats
func (s *AdminService) GetUser(userID uint) (*UserWithStats, error) {
	var u User
	if err := s.db.Preload("Addresses").First(&u, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	userStats, err := s.getUserStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	userStats.User = u
	userStats.User.Password = ""

	return userStats, nil
}

// UpdateUserStatus updates user active status
func (s *AdminService) UpdateUserStatus(userID uint, req *UserStatusUpdateRequest, adminID uint) error {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	if userID == adminID && !req.IsActive {
		return fmt.Errorf("cannot deactivate your own account")
	}

	updates := map[string]interface{}{
		"is_active":  req.IsActive,
		"updated_at": time.Now().UTC(),
	}

	if err := s.db.Model(&u).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

// ListWholesaleApplications retrieves users with a pending wholesale
// application, oldest first
func (s *AdminService) ListWholesaleApplications(page, limit int) (*UserListResponse, error) {
	req := &UserListRequest{
		Page:            page,
		Limit:           limit,
		WholesaleStatus: WholesaleStatusPending,
		SortBy:          "wholesale_applied_at",
		SortOrder:       "asc",
	}
	return s.GetUsers(req)
}

// ReviewWholesaleApplication approves or rejects a pending wholesale
// application and notifies the applicant.
func (s *AdminService) ReviewWholesaleApplication(userID uint, req *WholesaleReviewRequest) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	if u.WholesaleStatus != WholesaleStatusPending {
		return nil, fmt.Errorf("no pending wholesale application for this user")
	}

	status := WholesaleStatusRejected
	if req.Approve {
		status = WholesaleStatusApproved
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"wholesale_status":      status,
		"wholesale_reviewed_at": now,
		"wholesale_note":        req.Note,
	}
	if err := s.db.Model(&u).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update wholesale status: %w", err)
	}

	if err := s.emailService.SendWholesaleDecisionEmail(context.Background(), &email.WholesaleDecisionData{
		Email:       u.Email,
		FirstName:   u.FirstName,
		CompanyName: u.CompanyName,
		Approved:    req.Approve,
	}); err != nil {
		// Email failure must not roll back the decision
		logrus.WithField("user_id", u.ID).WithError(err).Warn("failed to send wholesale decision email")
	}

	u.Password = ""
	return &u, nil
}

// getUserStats gets additional statistics for a user
func (s *AdminService) getUserStats(userID uint) (*UserWithStats, error) {
	stats := &UserWithStats{}

	type OrderStats struct {
		OrderCount  int64
		TotalSpent  int64
		LastOrderAt *time.Time
	}

	var orderStats OrderStats
	err := s.db.Raw(`
		SELECT
			COUNT(*) as order_count,
			COALESCE(SUM(total_amount), 0) as total_spent,
			MAX(created_at) as last_order_at
		FROM orders
		WHERE user_id = ? AND status != 'cancelled'
	`, userID).Scan(&orderStats).Error

	if err != nil {
		orderStats = OrderStats{}
	}

	stats.OrderCount = orderStats.OrderCount
	stats.TotalSpent = orderStats.TotalSpent
	stats.LastOrderAt = orderStats.LastOrderAt

	var addressCount int64
	s.db.Model(&Address{}).Where("user_id = ?", userID).Count(&addressCount)
	stats.AddressCount = int(addressCount)

	return stats, nil
}
