package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hostel Core API",
        "description": "Attendance lifecycle, checkout deduction rules, financial ledger and deduction statistics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attendance", "description": "Daily presence lifecycle"},
        {"name": "CheckoutRules", "description": "Per-person deduction rules"},
        {"name": "Deductions", "description": "What-if deduction previews"},
        {"name": "Ledger", "description": "Realized deduction ledger"},
        {"name": "Statistics", "description": "Aggregated deduction reporting"}
    ],
    "paths": {
        "/attendance/check-in": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Check a person in for the day",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Incomplete record already exists"}
                }
            }
        },
        "/attendance/check-out": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Request checkout for today's open check-in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No open check-in found"}
                }
            }
        },
        "/attendance/{id}/approve": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Approve a pending checkout",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Record is not pending"}
                }
            }
        },
        "/attendance/{id}/decline": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Decline a pending checkout",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/DeclineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Record is not pending"}
                }
            }
        },
        "/attendance/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Fetch a single attendance record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "person_id", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string", "enum": ["resident", "staff"]},
                    {"name": "location_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkout-rules": {
            "post": {
                "tags": ["CheckoutRules"],
                "summary": "Create a checkout deduction rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Person already has an active rule"}
                }
            },
            "get": {
                "tags": ["CheckoutRules"],
                "summary": "List all rules for a person",
                "parameters": [
                    {"name": "person_id", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "required": true, "type": "string", "enum": ["resident", "staff"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkout-rules/active": {
            "get": {
                "tags": ["CheckoutRules"],
                "summary": "Resolve the active rule for a person",
                "parameters": [
                    {"name": "person_id", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "required": true, "type": "string", "enum": ["resident", "staff"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkout-rules/{id}/activate": {
            "post": {
                "tags": ["CheckoutRules"],
                "summary": "Activate a checkout rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another active rule exists"}
                }
            }
        },
        "/checkout-rules/{id}/deactivate": {
            "post": {
                "tags": ["CheckoutRules"],
                "summary": "Deactivate a checkout rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkout-rules/{id}": {
            "delete": {
                "tags": ["CheckoutRules"],
                "summary": "Delete a checkout rule without ledger history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Rule has linked ledger entries"}
                }
            }
        },
        "/deductions/preview": {
            "get": {
                "tags": ["Deductions"],
                "summary": "Estimate the deduction for a checkout duration",
                "parameters": [
                    {"name": "person_id", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "required": true, "type": "string", "enum": ["resident", "staff"]},
                    {"name": "duration_hours", "in": "query", "required": true, "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/deductions/preview-table": {
            "get": {
                "tags": ["Deductions"],
                "summary": "Canonical deduction preview over the standard durations",
                "parameters": [
                    {"name": "person_id", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "required": true, "type": "string", "enum": ["resident", "staff"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ledger": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Record a realized deduction for an attendance event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Entry already exists for the attendance record"}
                }
            },
            "get": {
                "tags": ["Ledger"],
                "summary": "List ledger entries",
                "parameters": [
                    {"name": "person_id", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string", "enum": ["resident", "staff"]},
                    {"name": "location_id", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ledger/{id}": {
            "get": {
                "tags": ["Ledger"],
                "summary": "Fetch a single ledger entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Ledger"],
                "summary": "Correct the mutable fields of a ledger entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CorrectEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics/deductions": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Deduction statistics for a date window",
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "location_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics/deductions/export": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Export deduction statistics as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "location_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Exported file"},
                    "403": {"description": "Export disabled"}
                }
            }
        }
    },
    "definitions": {
        "CheckInRequest": {
            "type": "object",
            "required": ["person_id", "category"],
            "properties": {
                "person_id": {"type": "string"},
                "category": {"type": "string", "enum": ["resident", "staff"]},
                "location_id": {"type": "string"},
                "checkin_time": {"type": "string", "format": "date-time"},
                "checkout_time": {"type": "string", "format": "date-time"}
            }
        },
        "CheckoutRequest": {
            "type": "object",
            "required": ["person_id", "category"],
            "properties": {
                "person_id": {"type": "string"},
                "category": {"type": "string", "enum": ["resident", "staff"]},
                "checkout_time": {"type": "string", "format": "date-time"}
            }
        },
        "DeclineRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "CreateRuleRequest": {
            "type": "object",
            "required": ["person_id", "category"],
            "properties": {
                "person_id": {"type": "string"},
                "category": {"type": "string", "enum": ["resident", "staff"]},
                "percentage": {"type": "number", "minimum": 0, "maximum": 100},
                "active_after_days": {"type": "integer", "minimum": 0},
                "is_active": {"type": "boolean"}
            }
        },
        "RecordEntryRequest": {
            "type": "object",
            "required": ["person_id", "attendance_record_id", "deducted_amount"],
            "properties": {
                "person_id": {"type": "string"},
                "attendance_record_id": {"type": "string"},
                "deducted_amount": {"type": "number", "minimum": 0},
                "checkout_duration": {"type": "number"},
                "checkout_rule_id": {"type": "string"}
            }
        },
        "CorrectEntryRequest": {
            "type": "object",
            "properties": {
                "deducted_amount": {"type": "number", "minimum": 0},
                "checkout_duration": {"type": "number"},
                "checkout_rule_id": {"type": "string"}
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
