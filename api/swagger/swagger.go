package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Staff API",
        "description": "Staff records, class and subject teacher assignments, qualification checks and workload analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Staff", "description": "Staff record management"},
        {"name": "Assignments", "description": "Class teacher and subject teacher assignments"},
        {"name": "Qualification", "description": "Dry-run assignment checks"},
        {"name": "Workload", "description": "Advisory workload analytics"},
        {"name": "Metrics", "description": "Service observability"}
    ],
    "paths": {
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "summary": "List staff",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string", "enum": ["teaching", "non_teaching", "administrative"]},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "inactive", "on_leave"]},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Create staff member",
                "description": "Generates a staff code when none is supplied and retries on code collisions.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStaffRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Persistence conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Code generation exhausted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/bulk": {
            "post": {
                "tags": ["Staff"],
                "summary": "Bulk create staff members",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkCreateStaffRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-item results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}": {
            "get": {
                "tags": ["Staff"],
                "summary": "Get staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Staff"],
                "summary": "Update staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStaffRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Staff"],
                "summary": "Soft delete staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/staff/{id}/status": {
            "patch": {
                "tags": ["Staff"],
                "summary": "Change employment status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStaffStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments of a staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "academicYearId", "in": "query", "type": "integer"},
                    {"name": "includeInactive", "in": "query", "type": "boolean"},
                    {"name": "assignmentType", "in": "query", "type": "string", "enum": ["class_teacher", "subject_teacher"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}/workload": {
            "get": {
                "tags": ["Workload"],
                "summary": "Workload of a staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "academicYearId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}/validate/subject": {
            "post": {
                "tags": ["Qualification"],
                "summary": "Check a prospective subject assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateSubjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}/validate/class-teacher": {
            "post": {
                "tags": ["Qualification"],
                "summary": "Check a prospective class teacher assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateClassTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}/validate/batch": {
            "post": {
                "tags": ["Qualification"],
                "summary": "Check several prospective assignments together",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a staff member",
                "description": "Creates a class or subject teacher assignment, superseding incumbents atomically.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already class teacher, workload exceeded or duplicate", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Qualification rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/history": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Assignment history",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "integer"},
                    {"name": "subjectId", "in": "query", "type": "integer"},
                    {"name": "academicYearId", "in": "query", "type": "integer"},
                    {"name": "assignmentType", "in": "query", "type": "string", "enum": ["class_teacher", "subject_teacher"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete an assignment permanently",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/assignments/{id}/end": {
            "post": {
                "tags": ["Assignments"],
                "summary": "End an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/EndAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workload/distribution": {
            "get": {
                "tags": ["Workload"],
                "summary": "Workload distribution across teaching staff",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "academicYearId", "in": "query", "type": "integer"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Service metrics summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StaffMember": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "staff_code": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "category": {"type": "string"},
                "status": {"type": "string"},
                "department": {"type": "string"},
                "designation": {"type": "string"},
                "employment_type": {"type": "string"},
                "joining_date": {"type": "string"},
                "highest_qualification": {"type": "string"},
                "specialization": {"type": "string"},
                "license_number": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "CreateStaffRequest": {
            "type": "object",
            "properties": {
                "staffCode": {"type": "string"},
                "fullName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "category": {"type": "string", "enum": ["teaching", "non_teaching", "administrative"]},
                "status": {"type": "string", "enum": ["active", "inactive", "on_leave"]},
                "department": {"type": "string"},
                "designation": {"type": "string"},
                "employmentType": {"type": "string"},
                "joiningDate": {"type": "string"},
                "highestQualification": {"type": "string"},
                "specialization": {"type": "string"},
                "licenseNumber": {"type": "string"}
            },
            "required": ["fullName", "category"]
        },
        "UpdateStaffRequest": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "category": {"type": "string"},
                "department": {"type": "string"},
                "designation": {"type": "string"},
                "employmentType": {"type": "string"},
                "joiningDate": {"type": "string"},
                "highestQualification": {"type": "string"},
                "specialization": {"type": "string"},
                "licenseNumber": {"type": "string"}
            },
            "required": ["fullName", "category"]
        },
        "UpdateStaffStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["active", "inactive", "on_leave"]}
            },
            "required": ["status"]
        },
        "BulkCreateStaffRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/CreateStaffRequest"}}
            },
            "required": ["items"]
        },
        "StaffAssignment": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "staff_id": {"type": "integer"},
                "academic_year_id": {"type": "integer"},
                "assignment_type": {"type": "string"},
                "class_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "section": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "staffId": {"type": "integer"},
                "academicYearId": {"type": "integer"},
                "assignmentType": {"type": "string", "enum": ["class_teacher", "subject_teacher"]},
                "classId": {"type": "integer"},
                "subjectId": {"type": "integer"},
                "section": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "skipValidation": {"type": "boolean"}
            },
            "required": ["staffId", "academicYearId", "assignmentType"]
        },
        "EndAssignmentRequest": {
            "type": "object",
            "properties": {
                "endDate": {"type": "string"}
            }
        },
        "ValidateSubjectRequest": {
            "type": "object",
            "properties": {
                "subjectId": {"type": "integer"},
                "classId": {"type": "integer"}
            },
            "required": ["subjectId"]
        },
        "ValidateClassTeacherRequest": {
            "type": "object",
            "properties": {
                "classId": {"type": "integer"}
            },
            "required": ["classId"]
        },
        "ValidateBatchRequest": {
            "type": "object",
            "properties": {
                "assignments": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "subjectId": {"type": "integer"},
                            "classId": {"type": "integer"}
                        }
                    }
                }
            },
            "required": ["assignments"]
        },
        "ValidationIssue": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "context": {"type": "object"}
            }
        },
        "ValidationResult": {
            "type": "object",
            "properties": {
                "is_valid": {"type": "boolean"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/ValidationIssue"}},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/ValidationIssue"}}
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
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
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
