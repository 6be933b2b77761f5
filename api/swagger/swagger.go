package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Courtside API",
        "description": "Team management backend: goal progress tracking over live game events",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Goals", "description": "Goal lifecycle and metric definitions"},
        {"name": "Sessions", "description": "Game sessions and the live event feed"},
        {"name": "Progress", "description": "Goal progress calculation and history"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/goals": {
            "get": {
                "tags": ["Goals"],
                "summary": "List goals",
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Goals"],
                "summary": "Create a goal",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals/calculate": {
            "post": {
                "tags": ["Progress"],
                "summary": "Calculate goal progress for a session",
                "description": "Runs a single goal when goal_id is present, otherwise the full batch of active goals. Only the session creator may calculate.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing session_id"},
                    "401": {"description": "Unauthenticated"},
                    "403": {"description": "Caller is not the session creator"},
                    "404": {"description": "Session or goal not found"}
                }
            }
        },
        "/goals/{goalId}": {
            "get": {
                "tags": ["Goals"],
                "summary": "Get one goal",
                "parameters": [{"name": "goalId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Goal not found"}
                }
            }
        },
        "/goals/{goalId}/deactivate": {
            "post": {
                "tags": ["Goals"],
                "summary": "Deactivate a goal",
                "parameters": [{"name": "goalId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Goal not found"}
                }
            }
        },
        "/goals/{goalId}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Paginated progress history for a goal",
                "parameters": [
                    {"name": "goalId", "in": "path", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Goal not found"}
                }
            }
        },
        "/goals/{goalId}/progress/export": {
            "get": {
                "tags": ["Progress"],
                "summary": "Download progress history as CSV or PDF",
                "parameters": [
                    {"name": "goalId", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/metrics/definitions": {
            "get": {
                "tags": ["Goals"],
                "summary": "List metric definitions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Open a game session",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sessions/{sessionId}/close": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Close a game session",
                "parameters": [{"name": "sessionId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Caller is not the session creator"}
                }
            }
        },
        "/sessions/{sessionId}/events": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List a session's event feed",
                "parameters": [{"name": "sessionId", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Record a live stat event",
                "parameters": [{"name": "sessionId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Session is closed"}
                }
            }
        }
    },
    "definitions": {
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
                "pagination": {"$ref": "#/definitions/Pagination"}
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
