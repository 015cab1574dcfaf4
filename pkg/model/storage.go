package model

import "encoding/json"

// userRecord is the storage form of a User. Unlike the API form it keeps the
// password hash and the security answers.
type userRecord struct {
	ID                int              `json:"id"`
	Email             string           `json:"email"`
	PasswordHash      string           `json:"passwordHash"`
	SecurityQuestions []questionRecord `json:"securityQuestions"`
}

type questionRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EncodeUsers serializes users for storage, secrets included.
func EncodeUsers(users []User) ([]byte, error) {
	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		r := userRecord{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash}
		for _, q := range u.SecurityQuestions {
			r.SecurityQuestions = append(r.SecurityQuestions, questionRecord(q))
		}
		records = append(records, r)
	}
	return json.Marshal(records)
}

// DecodeUsers is the inverse of EncodeUsers.
func DecodeUsers(data []byte) ([]User, error) {
	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, r := range records {
		u := User{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash}
		for _, q := range r.SecurityQuestions {
			u.SecurityQuestions = append(u.SecurityQuestions, SecurityQuestion(q))
		}
		users = append(users, u)
	}
	return users, nil
}
