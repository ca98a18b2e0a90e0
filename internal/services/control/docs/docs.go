// Package docs registers the control api swagger spec
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ping": {
            "get": {"tags": ["control"], "summary": "Ping", "produces": ["application/json"],
                "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/domain.PingOutput"}}}}
        },
        "/runs/import": {
            "post": {"tags": ["runs"], "summary": "Import new orders", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/domain.RunInput"}}],
                "responses": {"200": {"description": "delivered", "schema": {"$ref": "#/definitions/reports.Result"}},
                    "502": {"description": "upstream failed"}, "504": {"description": "report not ready in time"}}}
        },
        "/runs/report": {
            "post": {"tags": ["runs"], "summary": "Deliver the all orders report", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/domain.RunInput"}}],
                "responses": {"200": {"description": "delivered", "schema": {"$ref": "#/definitions/reports.Result"}}}}
        },
        "/runs/ads": {
            "post": {"tags": ["runs"], "summary": "Export campaign spend for one day", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/domain.AdsInput"}}],
                "responses": {"200": {"description": "delivered", "schema": {"$ref": "#/definitions/reports.Result"}}}}
        },
        "/runs/cycle": {
            "post": {"tags": ["runs"], "summary": "Run every kind once", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/domain.CycleInput"}}],
                "responses": {"200": {"description": "finished", "schema": {"$ref": "#/definitions/reports.CycleReport"}},
                    "409": {"description": "a cycle is already running"}}}
        },
        "/schedule": {
            "get": {"tags": ["schedule"], "summary": "Schedule state", "produces": ["application/json"],
                "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/sched.State"}}}},
            "put": {"tags": ["schedule"], "summary": "Enable or disable the fixed anchor schedule", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/domain.ScheduleInput"}}],
                "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/sched.State"}}}}
        },
        "/schedule/run-now": {
            "post": {"tags": ["schedule"], "summary": "Run a cycle now", "produces": ["application/json"],
                "responses": {"200": {"description": "finished", "schema": {"$ref": "#/definitions/reports.CycleReport"}},
                    "409": {"description": "a cycle is already running"}}}
        },
        "/connect": {
            "post": {"tags": ["control"], "summary": "Register this relay with the backend", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/domain.ConnectInput"}}],
                "responses": {"200": {"description": "registered", "schema": {"$ref": "#/definitions/domain.ConnectOutput"}}}}
        },
        "/outcomes": {
            "get": {"tags": ["control"], "summary": "Recent run outcomes", "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "phase", "type": "string", "enum": ["import", "report", "ads", "cycle"]},
                    {"in": "query", "name": "limit", "type": "integer", "maximum": 500}],
                "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/domain.OutcomesOutput"}}}}
        },
        "/stats": {
            "get": {"tags": ["control"], "summary": "Polling counters and schedule", "produces": ["application/json"],
                "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/domain.StatsOutput"}}}}
        }
    },
    "definitions": {
        "domain.PingOutput": {"type": "object", "properties": {
            "ok": {"type": "boolean"}, "service": {"type": "string"}, "version": {"type": "string"}}},
        "domain.RunInput": {"type": "object", "properties": {"referenceId": {"type": "string", "maxLength": 128}}},
        "domain.AdsInput": {"type": "object", "required": ["date"], "properties": {"date": {"type": "string", "example": "2024-01-01"}}},
        "domain.CycleInput": {"type": "object", "properties": {"date": {"type": "string", "example": "2024-01-01"}}},
        "domain.ScheduleInput": {"type": "object", "required": ["enabled"], "properties": {
            "enabled": {"type": "boolean"}, "intervalHours": {"type": "integer", "minimum": 0, "maximum": 24}}},
        "domain.ConnectInput": {"type": "object", "properties": {"autoEnabled": {"type": "boolean"}}},
        "domain.ConnectOutput": {"type": "object", "properties": {
            "registration": {"$ref": "#/definitions/reports.Registration"}, "backend": {"$ref": "#/definitions/reports.SinkResult"}}},
        "domain.OutcomesOutput": {"type": "object", "properties": {
            "items": {"type": "array", "items": {"$ref": "#/definitions/reports.RunOutcome"}}}},
        "domain.StatsOutput": {"type": "object", "properties": {
            "tracker": {"type": "object", "properties": {
                "polls": {"type": "integer"}, "inFlight": {"type": "integer"}, "started": {"type": "integer"}, "shared": {"type": "integer"}}},
            "schedule": {"$ref": "#/definitions/sched.State"}}},
        "reports.SinkResult": {"type": "object", "properties": {
            "ok": {"type": "boolean"}, "raw": {"type": "string"}, "body": {"type": "object"}}},
        "reports.Result": {"type": "object", "properties": {
            "kind": {"type": "string", "enum": ["NEW_ORDERS", "ALL_ORDERS", "AD_SPEND"]},
            "rows": {"type": "integer"}, "referenceId": {"type": "string"}, "documentId": {"type": "string"},
            "day": {"type": "string"}, "fileName": {"type": "string"}, "archived": {"type": "string"},
            "sink": {"$ref": "#/definitions/reports.SinkResult"}, "runId": {"type": "string"}}},
        "reports.RunOutcome": {"type": "object", "properties": {
            "runId": {"type": "string"}, "phase": {"type": "string"}, "status": {"type": "string", "enum": ["success", "fail", "skip"]},
            "durationMs": {"type": "integer"}, "errorKind": {"type": "string"}, "errorDetail": {"type": "string"},
            "meta": {"type": "object"}, "ts": {"type": "string", "format": "date-time"}}},
        "reports.CycleReport": {"type": "object", "properties": {
            "runId": {"type": "string"}, "reason": {"type": "string"}, "day": {"type": "string"},
            "startedAt": {"type": "string", "format": "date-time"}, "durationMs": {"type": "integer"},
            "kinds": {"type": "array", "items": {"type": "object", "properties": {
                "kind": {"type": "string"}, "outcome": {"$ref": "#/definitions/reports.RunOutcome"},
                "result": {"$ref": "#/definitions/reports.Result"}}}}}},
        "reports.Registration": {"type": "object", "properties": {
            "clientId": {"type": "string"}, "label": {"type": "string"}, "shopId": {"type": "string"}, "version": {"type": "string"},
            "ua": {"type": "string"}, "autoEnabled": {"type": "boolean"}, "connectedAt": {"type": "string", "format": "date-time"}}},
        "sched.State": {"type": "object", "properties": {
            "enabled": {"type": "boolean"}, "baseHour": {"type": "integer"}, "intervalHours": {"type": "integer"},
            "busy": {"type": "boolean"}, "next": {"type": "string", "format": "date-time"},
            "anchors": {"type": "array", "items": {"type": "string"}}, "fired": {"type": "integer"}, "skipped": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported swagger info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Title:            "reportrelay control API",
	Description:      "Runs report imports, ads exports and full cycles and controls the fixed anchor schedule.",
	InfoInstanceName: "relay",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
