package handler

import (
	"context"

	apphr "github.com/documentiulia/backend/internal/application/hr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EmployeeService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req apphr.EmployeeRequest) (*apphr.EmployeeResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.EmployeeResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter apphr.EmployeeListFilter) ([]apphr.EmployeeResponse, int64, error)
	Update(ctx context.Context, tenantID, companyID, id uuid.UUID, req apphr.EmployeeRequest) (*apphr.EmployeeResponse, error)
	Terminate(ctx context.Context, tenantID, companyID, id uuid.UUID, req apphr.TerminateRequest) (*apphr.EmployeeResponse, error)
	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}

type PayrollService interface {
	Create(ctx context.Context, tenantID, companyID uuid.UUID, req apphr.CreatePayrollRequest) (*apphr.PayrollResponse, error)
	Recalculate(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.PayrollResponse, error)
	Approve(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.PayrollResponse, error)
	MarkPaid(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.PayrollResponse, error)
	GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.PayrollResponse, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID, filter apphr.PayrollListFilter) ([]apphr.PayrollResponse, int64, error)
}

// HRHandler handles employees and monthly payroll runs
type HRHandler struct {
	BaseHandler
	employees EmployeeService
	payroll   PayrollService
}

func NewHRHandler(employees EmployeeService, payroll PayrollService) *HRHandler {
	return &HRHandler{employees: employees, payroll: payroll}
}

// CreateEmployee godoc
// @ID           createEmployee
// @Summary      Create an employee
// @Description  The CNP is validated with its control digit and must be unique per company.
// @Tags         hr
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body apphr.EmployeeRequest true "Employee"
// @Success      201 {object} APIResponse[apphr.EmployeeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /companies/{companyId}/employees [post]
func (h *HRHandler) CreateEmployee(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req apphr.EmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CreatedBy = userPtr(c)

	employee, err := h.employees.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, employee)
}

// ListEmployees godoc
// @ID           listEmployees
// @Summary      List employees
// @Tags         hr
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        search query string false "Name"
// @Param        status query string false "active, on_leave or terminated"
// @Param        department query string false "Department"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]apphr.EmployeeResponse]
// @Router       /companies/{companyId}/employees [get]
func (h *HRHandler) ListEmployees(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter apphr.EmployeeListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	employees, total, err := h.employees.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, employees, total, filter.Page, filter.PageSize)
}

// GetEmployee godoc
// @ID           getEmployee
// @Summary      Get an employee
// @Tags         hr
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Employee ID"
// @Success      200 {object} APIResponse[apphr.EmployeeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/employees/{id} [get]
func (h *HRHandler) GetEmployee(c *gin.Context) {
	h.withEmployee(c, h.employees.GetByID)
}

// UpdateEmployee godoc
// @ID           updateEmployee
// @Summary      Update an employee
// @Tags         hr
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Employee ID"
// @Param        request body apphr.EmployeeRequest true "Employee"
// @Success      200 {object} APIResponse[apphr.EmployeeResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/employees/{id} [put]
func (h *HRHandler) UpdateEmployee(c *gin.Context) {
	var req apphr.EmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withEmployee(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.EmployeeResponse, error) {
		return h.employees.Update(ctx, tenantID, companyID, id, req)
	})
}

// TerminateEmployee godoc
// @ID           terminateEmployee
// @Summary      Terminate an employee
// @Description  Defaults the termination date to today.
// @Tags         hr
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Employee ID"
// @Param        request body apphr.TerminateRequest false "Termination date"
// @Success      200 {object} APIResponse[apphr.EmployeeResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/employees/{id}/terminate [post]
func (h *HRHandler) TerminateEmployee(c *gin.Context) {
	var req apphr.TerminateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	h.withEmployee(c, func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.EmployeeResponse, error) {
		return h.employees.Terminate(ctx, tenantID, companyID, id, req)
	})
}

// DeleteEmployee godoc
// @ID           deleteEmployee
// @Summary      Delete an employee
// @Tags         hr
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Employee ID"
// @Success      204
// @Router       /companies/{companyId}/employees/{id} [delete]
func (h *HRHandler) DeleteEmployee(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.employees.Delete(c.Request.Context(), tenantID, companyID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreatePayroll godoc
// @ID           createPayroll
// @Summary      Run payroll for a month
// @Description  Calculates CAS, CASS, income tax and CAM for every active employee. One run per period.
// @Tags         payroll
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        request body apphr.CreatePayrollRequest true "Period as YYYY-MM"
// @Success      201 {object} APIResponse[apphr.PayrollResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /companies/{companyId}/payroll [post]
func (h *HRHandler) CreatePayroll(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var req apphr.CreatePayrollRequest
	if !h.BindJSON(c, &req) {
		return
	}
	payroll, err := h.payroll.Create(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payroll)
}

// ListPayroll godoc
// @ID           listPayroll
// @Summary      List payroll runs
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        status query string false "draft, calculated, approved or paid"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]apphr.PayrollResponse]
// @Router       /companies/{companyId}/payroll [get]
func (h *HRHandler) ListPayroll(c *gin.Context) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	var filter apphr.PayrollListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	runs, total, err := h.payroll.List(c.Request.Context(), tenantID, companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, runs, total, filter.Page, filter.PageSize)
}

// GetPayroll godoc
// @ID           getPayroll
// @Summary      Get a payroll run with its entries
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Payroll ID"
// @Success      200 {object} APIResponse[apphr.PayrollResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/payroll/{id} [get]
func (h *HRHandler) GetPayroll(c *gin.Context) {
	h.withPayroll(c, h.payroll.GetByID)
}

// RecalculatePayroll godoc
// @ID           recalculatePayroll
// @Summary      Recalculate a payroll run from current employee data
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Payroll ID"
// @Success      200 {object} APIResponse[apphr.PayrollResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/payroll/{id}/recalculate [post]
func (h *HRHandler) RecalculatePayroll(c *gin.Context) {
	h.withPayroll(c, h.payroll.Recalculate)
}

// ApprovePayroll godoc
// @ID           approvePayroll
// @Summary      Approve a calculated payroll run
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Payroll ID"
// @Success      200 {object} APIResponse[apphr.PayrollResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/payroll/{id}/approve [post]
func (h *HRHandler) ApprovePayroll(c *gin.Context) {
	h.withPayroll(c, h.payroll.Approve)
}

// MarkPayrollPaid godoc
// @ID           markPayrollPaid
// @Summary      Mark an approved payroll run as paid
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        companyId path string true "Company ID"
// @Param        id path string true "Payroll ID"
// @Success      200 {object} APIResponse[apphr.PayrollResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /companies/{companyId}/payroll/{id}/pay [post]
func (h *HRHandler) MarkPayrollPaid(c *gin.Context) {
	h.withPayroll(c, h.payroll.MarkPaid)
}

func (h *HRHandler) withEmployee(c *gin.Context, action func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.EmployeeResponse, error)) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	employee, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

func (h *HRHandler) withPayroll(c *gin.Context, action func(ctx context.Context, tenantID, companyID, id uuid.UUID) (*apphr.PayrollResponse, error)) {
	tenantID, companyID, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payroll, err := action(c.Request.Context(), tenantID, companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payroll)
}
