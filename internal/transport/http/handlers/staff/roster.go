package staffhandler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
)

// handleRoster renders the active staff roster as a PDF table.
func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	active := true
	filter := staff.ListFilter{IsActive: &active, Limit: 100}
	if raw := r.URL.Query().Get("clinicId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "bad_payload", "clinicId must be a valid UUID", requestID)
			return
		}
		filter.ClinicID = &id
	}

	var roster []staff.Employee
	for {
		batch, err := h.Service.ListEmployees(r.Context(), filter)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		roster = append(roster, batch...)
		if len(batch) < filter.Limit {
			break
		}
		filter.Skip += filter.Limit
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Staff Roster")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 8, "Code", "1", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Role", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Hired", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, emp := range roster {
		name := ""
		if emp.Person != nil {
			name = fmt.Sprintf("%s %s", emp.Person.FirstName, emp.Person.LastName)
		}
		pdf.CellFormat(30, 8, emp.EmployeeCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, string(emp.Role), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, emp.HireDate.Format("2006-01-02"), "1", 1, "L", false, 0, "")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="roster.pdf"`)
	if err := pdf.Output(w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render roster", requestID)
	}
}
