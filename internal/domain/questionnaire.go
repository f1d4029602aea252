package domain

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// QuestionnaireResponse holds a client's financial questionnaire. It belongs
// to exactly one OnboardingApplication, keyed by the same user ID.
type QuestionnaireResponse struct {
	UserID               uint       `gorm:"primaryKey" json:"user_id"`
	Answers              string     `gorm:"type:text" json:"-"`
	AnnualIncome         string     `json:"annual_income"`
	NetWorth             string     `json:"net_worth"`
	RiskTolerance        string     `json:"risk_tolerance"`
	InvestmentHorizon    string     `json:"investment_horizon"`
	InvestmentExperience string     `json:"investment_experience"`
	FinancialGoals       string     `json:"financial_goals"`
	Completed            bool       `gorm:"default:false" json:"completed"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
}

// TableName specifies the table name for QuestionnaireResponse
func (QuestionnaireResponse) TableName() string {
	return "questionnaire_responses"
}

// BeforeCreate hook
func (q *QuestionnaireResponse) BeforeCreate(tx *gorm.DB) error {
	q.CreatedAt = time.Now()
	return nil
}

// BeforeUpdate hook
func (q *QuestionnaireResponse) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	q.UpdatedAt = &now
	return nil
}

// AnswerMap decodes the free-form answers keyed by question ID. Malformed
// stored JSON yields an empty map rather than an error.
func (q *QuestionnaireResponse) AnswerMap() map[string]string {
	answers := make(map[string]string)
	if q.Answers == "" {
		return answers
	}
	if err := json.Unmarshal([]byte(q.Answers), &answers); err != nil {
		return make(map[string]string)
	}
	return answers
}

// SetAnswers encodes the answer map into the stored JSON column.
func (q *QuestionnaireResponse) SetAnswers(answers map[string]string) error {
	if answers == nil {
		answers = make(map[string]string)
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	q.Answers = string(data)
	return nil
}
