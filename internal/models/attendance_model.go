package models

import "time"

// AttendanceEntry is one check-in. Entries are never updated or deleted.
type AttendanceEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Zone      string    `json:"zone"`
	WorkType  string    `json:"workType"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkTypes lists the field tasks a worker can check in for.
var WorkTypes = []string{
	"झाडांना पाणी देणे",
	"आळ तयार करणे",
	"ग्रीन नेट बांधणे",
	"मोठे गवत कापणे",
	"माती भुसभुशीत करणे",
	"गांडूळ खत टाकणे",
	"व्हर्मी कंपोस्ट खत टाकणे",
	"झाडांची पाने धुणे",
	"कंपोस्ट खत तयार करणे",
	"गांडूळ खत तयार करणे",
	"पाण्याच्या टाक्या भरणे",
	"ग्रास कटिंग किंवा इतर मशीन दुरुस्त करणे",
	"झाडांचे व इतर परिसर सर्वेक्षण करणे",
	"साहित्य नोंदणी करणे",
	"हजेरी नोंद करणे",
	"झुकलेल्या झाडांना आधार देणे",
	"पाण्याचा निचरा करणे",
	"कीटक नाशके फवारणे",
	"झाडा जवळचे गवत कापणे",
	"झाडांची माहिती अद्ययावत करणे",
	"नवीन झाडे लावणे",
	"मेलेली झाडे बदलणे",
	"झाडांची संख्या अद्ययावत करणे",
	"झाडांना नंबर देणे",
	"नवीन पाईप टाकणे",
	"पाईप दुरुस्त करणे",
	"गार्डन तयार करणे",
}
