package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/tasks": {
            "get": {
                "tags": ["tasks"],
                "summary": "List tasks",
                "description": "Get every task ordered by id",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/entities.Task"}
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            },
            "post": {
                "tags": ["tasks"],
                "summary": "Create a new task",
                "description": "Create a task; title, status and due date are required",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Task data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.TaskPayload"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/entities.Task"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ValidationErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["tasks"],
                "summary": "Get task by ID",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/entities.Task"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            },
            "patch": {
                "tags": ["tasks"],
                "summary": "Update a task",
                "description": "Change status, due date or description. The title cannot be changed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Fields to change",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.TaskPayload"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/entities.Task"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ValidationErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            },
            "delete": {
                "tags": ["tasks"],
                "summary": "Delete a task",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.MessageResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "title": {"type": "string", "example": "Write report"},
                "description": {"type": "string", "example": "Quarterly numbers"},
                "status": {"type": "string", "enum": ["Open", "In Progress", "Completed"], "example": "Open"},
                "due_date": {"type": "string", "format": "date", "example": "2026-12-31"}
            }
        },
        "ports.TaskPayload": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 100, "example": "Write report"},
                "description": {"type": "string", "maxLength": 500, "example": "Quarterly numbers"},
                "status": {"type": "string", "enum": ["Open", "In Progress", "Completed"], "example": "Open"},
                "dueDate": {"type": "string", "format": "date", "example": "2026-12-31"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Task not found"}
            }
        },
        "http.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "errors": {
                    "type": "array",
                    "items": {"type": "string"},
                    "example": ["Title is required and must be a non-empty string."]
                }
            }
        },
        "http.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Task deleted successfully"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "TaskFlow API",
	Description:      "Task tracking CRUD API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
