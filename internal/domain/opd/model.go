package opd

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObservationEntry is the payload shape shared by investigation, radiology
// and advice entries. The doctor and speciality fields stay empty; the
// legacy observation store never recorded them.
type ObservationEntry struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	Entry       string `json:"entry"`
	Score       int    `json:"score"`
	DoctorID    string `json:"doctorId"`
	Speciality  string `json:"speciality"`
	Notes       string `json:"notes"`
	Sync        bool   `json:"sync"`
	VisitedDate string `json:"visited_date"`
}

// ComplaintEntry carries duration and severity instead of notes.
type ComplaintEntry struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	Entry       string `json:"entry"`
	Score       int    `json:"score"`
	DoctorID    string `json:"doctorId"`
	Speciality  string `json:"speciality"`
	Duration    string `json:"duration"`
	Severity    string `json:"severity"`
	Sync        bool   `json:"sync"`
	VisitedDate string `json:"visited_date"`
}

type DiagnosisEntry struct {
	Title       string `json:"title"`
	Order       string `json:"order"`
	Certainty   string `json:"certainty"`
	Note        string `json:"note"`
	VisitedDate string `json:"visited_date"`
}

// ReferredTo keeps only the internal room referral; the legacy source has
// no government/other-hospital or named-doctor referrals, so those stay
// null rather than empty.
type ReferredTo struct {
	SelectedRoom          *string `json:"selectedRoom"`
	SelectedGovtHospital  *string `json:"selectedGovtHospital"`
	SelectedOtherHospital *string `json:"selectedOtherHospital"`
	SelectedDoctor        *string `json:"selectedDoctor"`
}

type FollowUp struct {
	Type         string `json:"type"`
	Duration     string `json:"duration"`
	DurationUnit string `json:"durationUnit"`
	Note         string `json:"note"`
}

// ExamForm is the vitals form of a consultation. Legacy observations carry
// none of it, so every field migrates as an empty string.
type ExamForm struct {
	Temperature     string `json:"temperature"`
	BPSystolic      string `json:"bpSystolic"`
	BPDiastolic     string `json:"bpDiastolic"`
	Pulse           string `json:"pulse"`
	PulseType       string `json:"pulseType"`
	RespiratoryRate string `json:"respiratoryRate"`
	Anemia          string `json:"anemia"`
	BMI             string `json:"bmi"`
	BMIStatus       string `json:"bmiStatus"`
	Height          string `json:"height"`
	HeightUnit      string `json:"heightUnit"`
	Jaundice        string `json:"jaundice"`
	LymphNode       string `json:"lymphNode"`
	OFC             string `json:"ofc"`
	Spleen          string `json:"spleen"`
	Thyroid         string `json:"thyroid"`
	Weight          string `json:"weight"`
}

type GeneralExamination struct {
	FormData    ExamForm `json:"formData"`
	VisitedDate string   `json:"visited_date"`
}

// PrescriptionData is the aggregated consultation document stored as the
// prescription_data text column.
type PrescriptionData struct {
	Investigations     []ObservationEntry `json:"investigations"`
	ChiefComplaints    []ComplaintEntry   `json:"chiefComplaints"`
	Diagnoses          []DiagnosisEntry   `json:"diagnoses"`
	Advice             []ObservationEntry `json:"advice"`
	FollowUp           FollowUp           `json:"followUp"`
	GeneralExamination GeneralExamination `json:"generalExamination"`
	Radiology          []ObservationEntry `json:"radiology"`
	ReferredTo         ReferredTo         `json:"referredTo"`
	SpecialityID       string             `json:"specialityId"`
}

// Prescription is one target row of opd.opd_prescriptions.
type Prescription struct {
	HospitalID     uuid.UUID
	DoctorID       uuid.UUID
	PatientID      uuid.UUID
	SpecialityID   uuid.UUID
	ConsultationID uuid.UUID
	IsFinal        bool
	Data           string
	UUID           uuid.UUID
	Status         string
	CreatedAt      time.Time
}

// radiologyNames lists the investigation concepts that land in the
// radiology section instead of the plain investigations list. Matching is
// case-insensitive on the investigation name.
var radiologyNames = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"ABDOMEN", "BMD", "CONTRAST X-RAY BARIUM MEAL FOLLOW THROUGH (WITHOUT MEDICINE)",
		"CONTRAST X-RAY BARIUM MEAL OF STOMACH AND DUODENUM (WITHOUT MEDICINE)", "CT SCAN HRCT OF CHEST",
		"CT SCAN OF BRAIN", "CT SCAN OF C/S OR D/L OR L/S SPINE", "CT SCAN OF CHEST",
		"CT SCAN OF HBS WITH CONTRAST", "CT SCAN OF KUB WITH CONTRAST", "CT SCAN OF LOWER ABDOMEN WITH CONTRAST (ORAL+IV)",
		"CT SCAN OF NECK", "CT SCAN OF PELVIS/JOINT", "CT SCAN OF UPPER ABDOMEN WITH CONTRAST (ORAL+IV)",
		"CT SCAN OF WHOLE ABDOMEN WITH CONTRAST (ORAL+IV)", "CT SCAN ORBIT", "CT SCAN PNS", "LOWER EXTREMITY",
		"MAMMOGRAM OF BOTH BREAST", "MAMMOGRAM OF LEFT BREAST", "MAMMOGRAM OF RIGHT BREAST", "MRA of Brain", "MRCP",
		"MRI of Both Hip Joint (plain)", "MRI of Both Hip Joint with contrast (without medicine)", "MRI of Both Knee Joint",
		"MRI of Both S.I. Joint (plain)", "MRI of Both S.I. Joint with contrast (without medicine)", "MRI of Brain (plain)",
		"MRI of Brain with contrast (without medicine)", "MRI of Cervical Spine (plain)", "MRI of Cervical Spine with contrast (without medicine)",
		"MRI of Dorsal Spine (plain)", "MRI of Dorsal Spine with contrast (without medicine)", "MRI of Left Hip Joint (plain)",
		"MRI of Left Hip Joint with contrast (without medicine)", "MRI of Left S.I. Joint (plain)", "MRI of Left S.I. Joint with contrast (without medicine)",
		"MRI of Lumbar Spine (plain)", "MRI of Lumbar Spine with contrast (without medicine)", "MRI OF LUMBO SACRAL SPINE WITH SCREENING OF WHOLE SPINE",
		"MRI of Orbit (plain)", "MRI of Orbit with contrast (without medicine)", "MRI of Pelvis (plain)", "MRI of Pelvis (plain) with contrast (without medicine)",
		"MRI of Right Hip Joint (plain)", "MRI of Right Hip Joint with contrast (without medicine)", "MRI of Right Knee Joint (plain)",
		"MRI of Right Knee Joint with contrast (without medicine)", "MRI of Right S.I. Joint (plain)", "MRI of Right S.I. Joint with contrast (without medicine)",
		"NECK", "SPINE", "ULTRASOUND HBS", "ULTRASOUND LOWER ABDOMEN", "ULTRASOUND OF BOTH BREAST", "ULTRASOUND OF LEFT BREAST",
		"ULTRASOUND OF SUPERFICIAL STRUCTURE", "ULTRASOUND PREGNANCY PROFILE", "ULTRASOUND SCROTUM (TESTES)", "ULTRASOUND UPPER ABDOMEN",
		"ULTRASOUND WHOLE ABDOMEN", "UPPER EXTREMITY", "USG OF W/A TO EXCLUDE ANY PATHOLOGY", "X-RAY CHEST", "X-RAY MASTOID TOWNE'S VIEW",
		"X-RAY NASOPHARYNX (LAT VIEW)", "X-RAY OPG", "X-Ray PNS (OM view)", "X-RAY PNS (OM VIEW)", "X-RAY TM JOINT B/V",
	} {
		radiologyNames[strings.ToUpper(name)] = struct{}{}
	}
}

// IsRadiology reports whether an investigation name belongs to the
// radiology section.
func IsRadiology(investigation string) bool {
	_, ok := radiologyNames[strings.ToUpper(investigation)]
	return ok
}

// Flow-specific skip reasons.
const (
	ReasonPatientNotMigrated = "Patient not found in registration"
	ReasonNoObservations     = "No observations found"
)
