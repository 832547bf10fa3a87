package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Placement Portal API",
        "description": "Placement management portal with PRN-gated registration and academic-year reset",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Administrator login and password management"},
        {"name": "Ranges", "description": "PRN range registry"},
        {"name": "Eligibility", "description": "Registration number eligibility checks"},
        {"name": "Students", "description": "Gated student registration"},
        {"name": "Reset", "description": "Academic-year reset preview and execution"},
        {"name": "Audit", "description": "Compliance audit trail"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependencies unavailable"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"Bearer": []}],
                "responses": {
                    "204": {"description": "Password changed"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current administrator info",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "User info", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/ranges": {
            "get": {
                "tags": ["Ranges"],
                "summary": "List PRN ranges",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "query", "name": "scope", "type": "string"},
                    {"in": "query", "name": "college_id", "type": "string"},
                    {"in": "query", "name": "include_disabled", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Registry listing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Ranges"],
                "summary": "Create PRN range",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreatePRNRangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Range created"},
                    "400": {"description": "Malformed range"},
                    "403": {"description": "Insufficient authority"}
                }
            }
        },
        "/api/v1/ranges/{id}": {
            "patch": {
                "tags": ["Ranges"],
                "summary": "Update PRN range",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Range updated"},
                    "403": {"description": "Owned by a higher authority"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Ranges"],
                "summary": "Delete PRN range",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Range deleted"},
                    "403": {"description": "Owned by a higher authority"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/ranges/export": {
            "get": {
                "tags": ["Ranges"],
                "summary": "Export PRN ranges as CSV",
                "security": [{"Bearer": []}],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/api/v1/colleges": {
            "get": {
                "tags": ["Students"],
                "summary": "List colleges",
                "responses": {
                    "200": {"description": "College roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/eligibility/check": {
            "post": {
                "tags": ["Eligibility"],
                "summary": "Check PRN eligibility",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EligibilityCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verdict", "schema": {"$ref": "#/definitions/EligibilityVerdict"}}
                }
            }
        },
        "/api/v1/students/register": {
            "post": {
                "tags": ["Students"],
                "summary": "Register student behind the eligibility gate",
                "responses": {
                    "201": {"description": "Account created"},
                    "403": {"description": "Registration number not eligible"},
                    "409": {"description": "PRN or email already registered"}
                }
            }
        },
        "/api/v1/reset/preview": {
            "get": {
                "tags": ["Reset"],
                "summary": "Preview academic-year reset",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "Snapshot counts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Super admin only"}
                }
            }
        },
        "/api/v1/reset/execute": {
            "post": {
                "tags": ["Reset"],
                "summary": "Execute academic-year reset",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ExecuteResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reset committed"},
                    "400": {"description": "Gate failure"},
                    "401": {"description": "Password verification failed"},
                    "409": {"description": "Reset already in progress"},
                    "500": {"description": "Transaction rolled back"}
                }
            }
        },
        "/api/v1/audit-logs": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit logs",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "Paginated trail", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreatePRNRangeRequest": {
            "type": "object",
            "required": ["scope"],
            "properties": {
                "range_start": {"type": "string"},
                "range_end": {"type": "string"},
                "single_prn": {"type": "string"},
                "scope": {"type": "string", "enum": ["GLOBAL", "COLLEGE"]},
                "college_id": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "EligibilityCheckRequest": {
            "type": "object",
            "required": ["prn"],
            "properties": {
                "prn": {"type": "string"},
                "college_id": {"type": "string"}
            }
        },
        "EligibilityVerdict": {
            "type": "object",
            "properties": {
                "matched": {"type": "boolean"},
                "matching_range_id": {"type": "string"},
                "scope": {"type": "string"},
                "is_enabled": {"type": "boolean"}
            }
        },
        "ExecuteResetRequest": {
            "type": "object",
            "required": ["academic_year", "confirmation", "password"],
            "properties": {
                "academic_year": {"type": "string", "example": "2025-26"},
                "confirmation": {"type": "string", "example": "RESET 2025-26"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
