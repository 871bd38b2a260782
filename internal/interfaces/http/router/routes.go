package router

import (
	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/interfaces/http/handler"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Auth          *handler.AuthHandler
	Company       *handler.CompanyHandler
	Client        *handler.ClientHandler
	Project       *handler.ProjectHandler
	Invoice       *handler.InvoiceHandler
	EFactura      *handler.EFacturaHandler
	Inventory     *handler.InventoryHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	HR            *handler.HRHandler
	Receipt       *handler.ReceiptHandler
	Content       *handler.ContentHandler
	DataExchange  *handler.DataExchangeHandler
	Onboarding    *handler.OnboardingHandler
	System        *handler.SystemHandler
}

// APIGroups declares every API route. Authentication is applied once in front
// of the API group; here each route only states the permission it needs.
// Company-scoped routes resolve :companyId against the caller's tenant first.
func APIGroups(h Handlers, companies middleware.CompanyResolver) []*DomainGroup {
	return []*DomainGroup{
		authRoutes(h.Auth),
		userRoutes(h.Auth),
		companyRoutes(h, companies),
		forumRoutes(h.Content),
		blogRoutes(h.Content),
		onboardingRoutes(h.Onboarding),
		systemRoutes(h.System),
	}
}

// RegisterAPI mounts APIGroups on r.
func RegisterAPI(r *Router, h Handlers, companies middleware.CompanyResolver) *Router {
	for _, g := range APIGroups(h, companies) {
		r.Register(g)
	}
	return r
}

func perm(p string) gin.HandlerFunc {
	return middleware.RequirePermission(p)
}

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/register", h.Register).
		POST("/login", h.Login).
		POST("/refresh", h.RefreshToken).
		POST("/logout", h.Logout).
		GET("/me", h.GetCurrentUser).
		PUT("/password", h.ChangePassword)
	return g
}

func userRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("users", "/users").
		Use(middleware.RequireRole(string(identity.RoleOwner)))
	g.POST("", h.CreateUser).
		POST("/:id/unlock", h.UnlockUser)
	return g
}

func companyRoutes(h Handlers, companies middleware.CompanyResolver) *DomainGroup {
	read, write := perm(identity.PermCompanyRead), perm(identity.PermCompanyWrite)

	g := NewDomainGroup("company", "/companies")
	g.GET("", read, h.Company.List).
		POST("", write, h.Company.Create)

	scoped := g.Group("company-scope", "/:"+middleware.CompanyParam).
		Use(middleware.CompanyScope(companies))
	scoped.GET("", read, h.Company.Get).
		PUT("", write, h.Company.Update).
		DELETE("", write, h.Company.Delete).
		POST("/activate", write, h.Company.Activate).
		POST("/deactivate", write, h.Company.Deactivate)

	clientRoutes(scoped, h.Client)
	projectRoutes(scoped, h.Project)
	invoiceRoutes(scoped, h.Invoice)
	efacturaRoutes(scoped, h.EFactura)
	inventoryRoutes(scoped, h.Inventory)
	purchaseOrderRoutes(scoped, h.PurchaseOrder)
	hrRoutes(scoped, h.HR)
	receiptRoutes(scoped, h.Receipt)
	dataExchangeRoutes(scoped, h.DataExchange)
	return g
}

func clientRoutes(parent *DomainGroup, h *handler.ClientHandler) {
	read, write := perm(identity.PermClientRead), perm(identity.PermClientWrite)
	parent.Group("client", "/clients").
		GET("", read, h.List).
		POST("", write, h.Create).
		GET("/:id", read, h.Get).
		PUT("/:id", write, h.Update).
		DELETE("/:id", write, h.Delete)
}

func projectRoutes(parent *DomainGroup, h *handler.ProjectHandler) {
	read, write := perm(identity.PermProjectRead), perm(identity.PermProjectWrite)
	parent.Group("project", "/projects").
		GET("", read, h.List).
		POST("", write, h.Create).
		GET("/:id", read, h.Get).
		PUT("/:id", write, h.Update).
		DELETE("/:id", write, h.Delete)
}

func invoiceRoutes(parent *DomainGroup, h *handler.InvoiceHandler) {
	read, write := perm(identity.PermInvoiceRead), perm(identity.PermInvoiceWrite)
	parent.Group("invoice", "/invoices").
		GET("", read, h.List).
		POST("", write, h.Create).
		GET("/summary", read, h.Summary).
		GET("/overdue", read, h.Overdue).
		POST("/bulk/status", write, h.BulkStatus).
		POST("/bulk/delete", write, h.BulkDelete).
		GET("/:id", read, h.Get).
		PUT("/:id", write, h.Update).
		DELETE("/:id", write, h.Delete).
		GET("/:id/transitions", read, h.Transitions).
		GET("/:id/pdf", read, h.PDF).
		POST("/:id/submit", write, h.SubmitForApproval).
		POST("/:id/approve", write, h.Approve).
		POST("/:id/pay", write, h.MarkPaid).
		POST("/:id/cancel", write, h.Cancel)
}

func efacturaRoutes(parent *DomainGroup, h *handler.EFacturaHandler) {
	read, submit := perm(identity.PermEFacturaRead), perm(identity.PermEFacturaSubmit)
	parent.Group("efactura", "/efactura").
		GET("/submissions", read, h.List).
		POST("/submissions", submit, h.Submit).
		POST("/submissions/batch", submit, h.Batch).
		GET("/submissions/:id", read, h.Get).
		GET("/submissions/:id/xml", read, h.XML).
		POST("/submissions/:id/check", submit, h.Check).
		POST("/submissions/:id/resubmit", submit, h.Resubmit).
		POST("/sync", submit, h.Sync).
		GET("/analytics", read, h.Analytics)
}

func inventoryRoutes(parent *DomainGroup, h *handler.InventoryHandler) {
	read, write := perm(identity.PermInventoryRead), perm(identity.PermInventoryWrite)
	parent.Group("inventory", "/inventory").
		GET("/products", read, h.ListProducts).
		POST("/products", write, h.CreateProduct).
		GET("/products/low-stock", read, h.LowStock).
		GET("/products/:id", read, h.GetProduct).
		PUT("/products/:id", write, h.UpdateProduct).
		DELETE("/products/:id", write, h.DeleteProduct).
		GET("/movements", read, h.ListMovements).
		POST("/movements", write, h.RecordMovement).
		GET("/movements/analytics", read, h.MovementAnalytics)
}

func purchaseOrderRoutes(parent *DomainGroup, h *handler.PurchaseOrderHandler) {
	read, write := perm(identity.PermProcurementRead), perm(identity.PermProcurementWrite)
	parent.Group("procurement", "/purchase-orders").
		GET("", read, h.List).
		POST("", write, h.Create).
		GET("/:id", read, h.Get).
		PUT("/:id", write, h.Update).
		DELETE("/:id", write, h.Delete).
		POST("/:id/submit", write, h.Submit).
		POST("/:id/approve", write, h.Approve).
		POST("/:id/reject", write, h.Reject).
		POST("/:id/send", write, h.Send).
		POST("/:id/acknowledge", write, h.Acknowledge).
		POST("/:id/receive", write, h.Receive).
		POST("/:id/invoiced", write, h.MarkInvoiced).
		POST("/:id/close", write, h.Close).
		POST("/:id/cancel", write, h.Cancel)
}

func hrRoutes(parent *DomainGroup, h *handler.HRHandler) {
	read, write := perm(identity.PermHRRead), perm(identity.PermHRWrite)
	parent.Group("employee", "/employees").
		GET("", read, h.ListEmployees).
		POST("", write, h.CreateEmployee).
		GET("/:id", read, h.GetEmployee).
		PUT("/:id", write, h.UpdateEmployee).
		DELETE("/:id", write, h.DeleteEmployee).
		POST("/:id/terminate", write, h.TerminateEmployee)
	parent.Group("payroll", "/payroll").
		GET("", read, h.ListPayroll).
		POST("", write, h.CreatePayroll).
		GET("/:id", read, h.GetPayroll).
		POST("/:id/recalculate", write, h.RecalculatePayroll).
		POST("/:id/approve", write, h.ApprovePayroll).
		POST("/:id/pay", write, h.MarkPayrollPaid)
}

func receiptRoutes(parent *DomainGroup, h *handler.ReceiptHandler) {
	read, write := perm(identity.PermReceiptRead), perm(identity.PermReceiptWrite)
	parent.Group("receipt", "/receipts").
		GET("", read, h.List).
		POST("", write, h.Create).
		GET("/:id", read, h.Get).
		PUT("/:id", write, h.Update).
		DELETE("/:id", write, h.Delete).
		POST("/:id/upload-url", write, h.UploadURL).
		POST("/:id/confirm-upload", write, h.ConfirmUpload).
		POST("/:id/upload", write, h.Upload).
		POST("/:id/verify", write, h.Verify).
		POST("/:id/reject", write, h.Reject)
}

func dataExchangeRoutes(parent *DomainGroup, h *handler.DataExchangeHandler) {
	read, write := perm(identity.PermExportRead), perm(identity.PermExportWrite)
	parent.Group("export", "/exports").
		GET("", read, h.ListExports).
		POST("", write, h.CreateExport).
		GET("/:id", read, h.GetExport).
		GET("/:id/download", read, h.DownloadExport).
		POST("/:id/cancel", write, h.CancelExport)
	parent.Group("import", "/imports").
		GET("", read, h.ListImports).
		POST("", write, h.Import).
		GET("/:id", read, h.GetImport)
}

func forumRoutes(h *handler.ContentHandler) *DomainGroup {
	write := perm(identity.PermContentWrite)
	g := NewDomainGroup("forum", "/forum")
	g.GET("/categories", h.ListCategories).
		POST("/categories", perm(identity.PermContentModerate), h.CreateCategory).
		GET("/topics", h.ListTopics).
		POST("/topics", write, h.CreateTopic).
		GET("/topics/:id", h.GetTopic).
		PUT("/topics/:id", write, h.UpdateTopic).
		DELETE("/topics/:id", write, h.DeleteTopic).
		POST("/topics/:id/pin", h.PinTopic).
		POST("/topics/:id/lock", h.LockTopic).
		GET("/topics/:id/posts", h.ListPosts).
		POST("/topics/:id/posts", write, h.Reply).
		POST("/posts/:postId/accept", write, h.AcceptAnswer)
	return g
}

// blogRoutes serves the public blog and its editorial back office. The public
// routes are listed in the JWT middleware's skip routes.
func blogRoutes(h *handler.ContentHandler) *DomainGroup {
	g := NewDomainGroup("blog", "")
	g.GET("/blog", h.PublicBlogList).
		GET("/blog/:slug", h.PublicBlogPost)
	g.Group("blog-admin", "/admin/blog/posts").
		Use(perm(identity.PermContentWrite)).
		GET("", h.ListBlogPosts).
		POST("", h.CreateBlogPost).
		GET("/:id", h.GetBlogPost).
		PUT("/:id", h.UpdateBlogPost).
		DELETE("/:id", h.DeleteBlogPost).
		POST("/:id/publish", h.PublishBlogPost).
		POST("/:id/archive", h.ArchiveBlogPost)
	return g
}

func onboardingRoutes(h *handler.OnboardingHandler) *DomainGroup {
	g := NewDomainGroup("onboarding", "/onboarding")
	g.GET("", h.Get).
		PUT("/steps/:step", h.SaveStep).
		POST("/steps/:step/complete", h.CompleteStep).
		POST("/steps/:step/skip", h.SkipStep).
		POST("/steps/:step/goto", h.GoToStep).
		POST("/finish", h.Finish).
		POST("/reset", h.Reset)
	return g
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
	return g
}
