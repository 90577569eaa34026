package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Formation Enrollment API",
        "description": "Registration, login and seat-limited enrollment in training formations.",
        "version": "1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Registration per principal kind, login and identity"},
        {"name": "Formations", "description": "Formation catalogue with live remaining spots"},
        {"name": "Enrollments", "description": "Seat-limited enrollment lifecycle"}
    ],
    "paths": {
        "/auth/register/student": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a student",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "400": {"description": "Validation failure or email taken", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/register/instructor": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an instructor",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterInstructorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "400": {"description": "Validation failure or email taken", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/register/admin": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an admin",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "400": {"description": "Validation failure or email taken", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a principal",
                "description": "Looks the email up among students, then instructors, then admins.",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current principal",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PrincipalInfo"}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/formations": {
            "get": {
                "tags": ["Formations"],
                "summary": "List formations",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Formation"}}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/formations/{id}": {
            "get": {
                "tags": ["Formations"],
                "summary": "Get formation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Formation"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/formations/{id}/enroll": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll the calling student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "400": {"description": "Already enrolled or formation full", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "403": {"description": "Caller is not a student", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Formation not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "400": {"description": "Validation, duplicate or capacity failure", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "403": {"description": "Caller is not an admin", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Student or formation not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/enrollments/student/{studentId}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List a student's enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "studentId", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Enrollment"}}},
                    "403": {"description": "Another student's enrollments", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Enrollments"],
                "summary": "Change enrollment status (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string", "format": "uuid"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Enrollment"}},
                    "400": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Credentials": {
            "type": "object",
            "required": ["firstName", "lastName", "email", "password"],
            "properties": {
                "firstName": {"type": "string", "maxLength": 100},
                "lastName": {"type": "string", "maxLength": 100},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 8, "maxLength": 72}
            }
        },
        "RegisterStudentRequest": {
            "allOf": [
                {"$ref": "#/definitions/Credentials"},
                {"type": "object", "properties": {
                    "phone": {"type": "string"},
                    "dateOfBirth": {"type": "string", "format": "date"}
                }}
            ]
        },
        "RegisterInstructorRequest": {
            "allOf": [
                {"$ref": "#/definitions/Credentials"},
                {"type": "object", "properties": {
                    "speciality": {"type": "string"},
                    "phone": {"type": "string"}
                }}
            ]
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
            }
        },
        "PrincipalInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["STUDENT", "INSTRUCTOR", "ADMIN"]}
            }
        },
        "AuthEnvelope": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "token": {"type": "string"},
                "data": {"$ref": "#/definitions/PrincipalInfo"}
            }
        },
        "Formation": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "availableSpots": {"type": "integer"},
                "activeEnrollments": {"type": "integer"},
                "remainingSpots": {"type": "integer"},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "instructorId": {"type": "string", "format": "uuid"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateEnrollmentRequest": {
            "type": "object",
            "required": ["studentId", "formationId"],
            "properties": {
                "studentId": {"type": "string", "format": "uuid"},
                "formationId": {"type": "string", "format": "uuid"}
            }
        },
        "UpdateEnrollmentStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["COMPLETED", "CANCELLED"]}
            }
        },
        "Enrollment": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "studentId": {"type": "string", "format": "uuid"},
                "formationId": {"type": "string", "format": "uuid"},
                "enrollmentDate": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["ACTIVE", "COMPLETED", "CANCELLED"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["fail", "error"]},
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"}
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
