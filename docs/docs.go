// Package docs registers the OpenAPI document served under /swagger.
//
// The operations are collected from the handler annotations; regenerate after
// changing a handler:
//
//	swag init --v3.1 -g cmd/server/main.go -o docs --parseInternal
package docs

import "github.com/swaggo/swag/v2"

//go:generate swag init --v3.1 -g cmd/server/main.go -o . --dir ../ --parseInternal

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "type": "http",
                "scheme": "bearer",
                "bearerFormat": "JWT"
            }
        }
    },
    "paths": {}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "DocumentIulia API",
	Description:      "Multi-tenant accounting API for Romanian companies: invoicing, e-Factura, inventory, procurement, payroll and receipts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
