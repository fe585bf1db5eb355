package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ResearchNest API",
        "description": "Research milestone tracking for graduate students and faculty",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Users", "description": "Registration and authentication"},
        {"name": "Milestones", "description": "Top-level research milestones"},
        {"name": "Stages", "description": "Stages within a milestone"},
        {"name": "Tasks", "description": "Tasks within a stage"},
        {"name": "Subtasks", "description": "Subtasks within a task"},
        {"name": "Notes", "description": "Faculty notes on students"},
        {"name": "Progress", "description": "Aggregated progress views"},
        {"name": "Faculty", "description": "Department-level faculty queries"}
    ],
    "paths": {
        "/users/register": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a student or faculty account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/users/login": {
            "post": {
                "tags": ["Users"],
                "summary": "Authenticate and receive a JWT",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/milestones": {
            "post": {
                "tags": ["Milestones"],
                "summary": "Create milestone (faculty only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMilestoneRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/milestones/student/{studentId}": {
            "get": {
                "tags": ["Milestones"],
                "summary": "List a student's milestones with stages",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/milestones/{id}/status": {
            "patch": {
                "tags": ["Milestones"],
                "summary": "Update milestone status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/milestones/{id}/freeze": {
            "patch": {
                "tags": ["Milestones"],
                "summary": "Freeze or unfreeze milestone (faculty only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FreezeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/milestones/{id}/approve": {
            "patch": {
                "tags": ["Milestones"],
                "summary": "Approve a milestone pending approval (faculty only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Milestone is not pending approval"}
                }
            }
        },
        "/milestones/{id}": {
            "delete": {
                "tags": ["Milestones"],
                "summary": "Delete milestone and descendants (faculty only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/stages": {
            "post": {
                "tags": ["Stages"],
                "summary": "Create stage (faculty only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stages/milestone/{milestoneId}": {
            "get": {
                "tags": ["Stages"],
                "summary": "List stages of a milestone",
                "parameters": [
                    {"name": "milestoneId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stages/{id}/status": {
            "patch": {
                "tags": ["Stages"],
                "summary": "Update stage status (owning student only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stages/{id}/freeze": {
            "patch": {
                "tags": ["Stages"],
                "summary": "Freeze or unfreeze stage (faculty only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FreezeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stages/{id}": {
            "delete": {
                "tags": ["Stages"],
                "summary": "Delete stage and descendants (faculty only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tasks": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Create task (owning student only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/stage/{stageId}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks of a stage",
                "parameters": [
                    {"name": "stageId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/{id}": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Update task fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete task and subtasks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/subtasks": {
            "post": {
                "tags": ["Subtasks"],
                "summary": "Create subtask (owning student only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubtaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subtasks/task/{taskId}": {
            "get": {
                "tags": ["Subtasks"],
                "summary": "List subtasks of a task",
                "parameters": [
                    {"name": "taskId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subtasks/{id}": {
            "put": {
                "tags": ["Subtasks"],
                "summary": "Update subtask fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSubtaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Subtasks"],
                "summary": "Delete subtask",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/notes": {
            "post": {
                "tags": ["Notes"],
                "summary": "Attach a note to a student (faculty only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notes/student/{studentId}": {
            "get": {
                "tags": ["Notes"],
                "summary": "List notes attached to a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notes/{id}": {
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete a note the caller authored",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/progress/{studentId}": {
            "get": {
                "tags": ["Progress"],
                "summary": "Nested milestone hierarchy for a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/{studentId}/summary": {
            "get": {
                "tags": ["Progress"],
                "summary": "Per-level status counts for a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/{id}/students": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Distinct students with milestones in the department",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/{id}/milestones": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Milestones in the department",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/{id}/progress": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Department progress grouped by student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/{id}/progress/export": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Department progress report as PDF or CSV",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "faculty"]},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "department": {"type": "string"}
            },
            "required": ["role", "id", "name", "email", "password"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "faculty"]},
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["role", "email", "password"]
        },
        "CreateMilestoneRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "name": {"type": "string"}
            },
            "required": ["student_id", "name"]
        },
        "CreateStageRequest": {
            "type": "object",
            "properties": {
                "milestone_id": {"type": "integer"},
                "name": {"type": "string"}
            },
            "required": ["milestone_id", "name"]
        },
        "CreateTaskRequest": {
            "type": "object",
            "properties": {
                "stage_id": {"type": "integer"},
                "name": {"type": "string"},
                "due_date": {"type": "string"}
            },
            "required": ["stage_id", "name"]
        },
        "CreateSubtaskRequest": {
            "type": "object",
            "properties": {
                "task_id": {"type": "integer"},
                "name": {"type": "string"}
            },
            "required": ["task_id", "name"]
        },
        "UpdateTaskRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "due_date": {"type": "string"},
                "status": {"type": "string", "enum": ["In Progress", "Completed"]}
            }
        },
        "UpdateSubtaskRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "status": {"type": "string", "enum": ["In Progress", "Completed"]}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            },
            "required": ["status"]
        },
        "FreezeRequest": {
            "type": "object",
            "properties": {
                "freeze": {"type": "boolean"}
            },
            "required": ["freeze"]
        },
        "CreateNoteRequest": {
            "type": "object",
            "properties": {
                "note": {"type": "string"},
                "student_id": {"type": "string"},
                "milestone_id": {"type": "integer"},
                "stage_id": {"type": "integer"},
                "task_id": {"type": "integer"},
                "subtask_id": {"type": "integer"}
            },
            "required": ["note"]
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
