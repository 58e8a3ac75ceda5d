// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler
// annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Sprinkle Fairydust",
            "email": "hello@sprinklefairydust.com.au"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/quotes": {
            "post": {
                "tags": ["Quotes"],
                "summary": "Submit a quote request",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SubmitQuoteRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SuccessResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "422": {"description": "Validation failed or booking shorter than one hour", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/tracking/page-views": {
            "post": {
                "tags": ["Tracking"],
                "summary": "Record a page view or engagement event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.TrackPageViewRequest"}}],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/domain.TrackPageViewResponse"}},
                    "202": {"description": "Ignored admin path", "schema": {"$ref": "#/definitions/domain.TrackPageViewResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/testimonials": {
            "get": {
                "tags": ["Testimonials"],
                "summary": "List approved testimonials",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 5, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PaginatedTestimonials"}}}
            },
            "post": {
                "tags": ["Testimonials"],
                "summary": "Submit a testimonial",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SubmitTestimonialRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.SuccessResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/quotes/{id}/confirm": {
            "get": {
                "tags": ["Quote Links"],
                "summary": "Confirm a priced quote",
                "produces": ["text/html"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "signature", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "Confirmation page"}, "403": {"description": "Forbidden"}}
            }
        },
        "/quotes/{id}/open": {
            "get": {
                "tags": ["Quote Links"],
                "summary": "Email open tracking pixel",
                "produces": ["image/gif"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "signature", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "1x1 GIF"}, "403": {"description": "Forbidden"}}
            }
        },
        "/quotes/{id}/suggest-time": {
            "get": {
                "tags": ["Quote Links"],
                "summary": "Suggest-time form",
                "produces": ["text/html"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "signature", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "Form page"}, "403": {"description": "Forbidden"}, "422": {"description": "Quote already confirmed page"}}
            },
            "post": {
                "tags": ["Quote Links"],
                "summary": "Submit a suggested time",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "signature", "in": "query", "required": true},
                    {"type": "string", "name": "event_date", "in": "formData", "required": true},
                    {"type": "string", "name": "start_time", "in": "formData", "required": true},
                    {"type": "string", "name": "end_time", "in": "formData", "required": true},
                    {"type": "string", "name": "notes", "in": "formData"}
                ],
                "responses": {"200": {"description": "Thank you page"}, "403": {"description": "Forbidden"}, "422": {"description": "Form with errors, or quote already confirmed page"}}
            }
        },
        "/admin/quotes/list": {
            "get": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "List quotes",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.QuoteDTO"}}}}
            }
        },
        "/admin/quotes": {
            "post": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Create quote",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AdminQuoteRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.QuoteMutationResponse"}}}
            }
        },
        "/admin/quotes/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Get quote",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteDTO"}}, "404": {"description": "Quote not found", "schema": {"$ref": "#/definitions/domain.APIError"}}}
            },
            "put": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Update quote",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AdminQuoteRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteMutationResponse"}}, "422": {"description": "Validation failed or quote already confirmed", "schema": {"$ref": "#/definitions/domain.APIError"}}}
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Delete quote",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Quote not found", "schema": {"$ref": "#/definitions/domain.APIError"}}}
            }
        },
        "/admin/quotes/{id}/pricing": {
            "put": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Price quote",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.QuotePricingRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteMutationResponse"}}, "422": {"description": "Validation failed or quote already confirmed", "schema": {"$ref": "#/definitions/domain.APIError"}}}
            }
        },
        "/admin/quotes/{id}/send-email": {
            "post": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Send priced quote email",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteMutationResponse"}},
                    "422": {"description": "Email address missing or sender not configured", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "500": {"description": "Delivery failed", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/admin/quotes/{id}/decline": {
            "post": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Quotes"],
                "summary": "Decline quote",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/domain.DeclineQuoteRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.QuoteMutationResponse"}}, "422": {"description": "Quote already confirmed", "schema": {"$ref": "#/definitions/domain.APIError"}}}
            }
        },
        "/admin/tracking/stats": {
            "get": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Tracking"],
                "summary": "Analytics report",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "days", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TrackingStats"}}}
            }
        },
        "/admin/testimonials/list": {
            "get": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Testimonials"],
                "summary": "List all testimonials",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.TestimonialDTO"}}}}
            }
        },
        "/admin/testimonials": {
            "post": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Testimonials"],
                "summary": "Create testimonial",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AdminTestimonialRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.TestimonialDTO"}}}
            }
        },
        "/admin/testimonials/{id}": {
            "put": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Testimonials"],
                "summary": "Update testimonial",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AdminTestimonialRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TestimonialDTO"}}}
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}, {"BearerAuth": []}],
                "tags": ["Admin Testimonials"],
                "summary": "Delete testimonial",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "domain.APIError": {"type": "object", "properties": {
            "type": {"type": "string"}, "title": {"type": "string"}, "status": {"type": "integer"},
            "detail": {"type": "string"}, "errors": {"type": "object", "additionalProperties": {"type": "string"}}
        }},
        "domain.SuccessResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}},
        "domain.SubmitQuoteRequest": {"type": "object", "required": ["email", "name"], "properties": {
            "name": {"type": "string", "maxLength": 255}, "email": {"type": "string", "maxLength": 255},
            "anonymous_id": {"type": "string", "maxLength": 80}, "event": {"type": "string"}, "date": {"type": "string"},
            "address": {"type": "string"}, "start_time": {"type": "string"}, "end_time": {"type": "string"},
            "phone": {"type": "string"}, "guest_count": {"type": "integer"}, "package_name": {"type": "string"},
            "services_requested": {"type": "array", "items": {"type": "string"}}, "travel_area": {"type": "string"},
            "venue_type": {"type": "string", "enum": ["indoor", "outdoor", "mixed", "unsure"]}, "heard_about": {"type": "string"},
            "notes": {"type": "string"}, "details": {"type": "string"}, "terms_accepted": {"type": "boolean"}
        }},
        "domain.QuotePricingRequest": {"type": "object", "properties": {
            "calc_payment_type": {"type": "string", "enum": ["hourly", "perface", "package"]},
            "calc_base_amount": {"type": "number"}, "calc_setup_amount": {"type": "number"}, "calc_travel_amount": {"type": "number"},
            "calc_subtotal": {"type": "number"}, "calc_gst_amount": {"type": "number"}, "calc_total_amount": {"type": "number"}
        }},
        "domain.AdminQuoteRequest": {"type": "object", "required": ["email", "name"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "anonymous_id": {"type": "string"}, "event_type": {"type": "string"},
            "event_date": {"type": "string"}, "address": {"type": "string"}, "start_time": {"type": "string"}, "end_time": {"type": "string"},
            "total_hours": {"type": "number"}, "phone": {"type": "string"}, "guest_count": {"type": "integer"}, "package_name": {"type": "string"},
            "services_requested": {"type": "array", "items": {"type": "string"}}, "travel_area": {"type": "string"},
            "venue_type": {"type": "string"}, "heard_about": {"type": "string"}, "notes": {"type": "string"},
            "calc_payment_type": {"type": "string"}, "calc_base_amount": {"type": "number"}, "calc_setup_amount": {"type": "number"},
            "calc_travel_amount": {"type": "number"}, "calc_subtotal": {"type": "number"}, "calc_gst_amount": {"type": "number"},
            "calc_total_amount": {"type": "number"}
        }},
        "domain.DeclineQuoteRequest": {"type": "object", "properties": {"reason": {"type": "string", "maxLength": 2000}}},
        "domain.QuoteDTO": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"},
            "state": {"type": "string", "enum": ["submitted", "priced", "confirmed", "declined", "time_suggested"]},
            "event_type": {"type": "string"}, "event_date": {"type": "string"}, "start_time": {"type": "string"}, "end_time": {"type": "string"},
            "total_hours": {"type": "number"}, "calc_total_amount": {"type": "number"}, "email_send_status": {"type": "string"},
            "client_confirmed_at": {"type": "string"}, "artist_declined_at": {"type": "string"}, "artist_decline_reason": {"type": "string"},
            "client_suggested_time_at": {"type": "string"}, "email_open_count": {"type": "integer"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}
        }},
        "domain.QuoteMutationResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "quote": {"$ref": "#/definitions/domain.QuoteDTO"}}},
        "domain.TrackPageViewRequest": {"type": "object", "required": ["anonymous_id", "page_key", "path"], "properties": {
            "anonymous_id": {"type": "string", "maxLength": 80}, "page_key": {"type": "string", "maxLength": 80},
            "path": {"type": "string", "maxLength": 255}, "referrer": {"type": "string", "maxLength": 512},
            "event_type": {"type": "string", "enum": ["view", "engagement"]}, "duration_seconds": {"type": "integer"}
        }},
        "domain.TrackPageViewResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "tracked": {"type": "boolean"}}},
        "domain.TrackingStats": {"type": "object", "properties": {
            "window_days": {"type": "integer"}, "overview": {"type": "object"},
            "country_views": {"type": "array", "items": {"type": "object"}}, "page_views": {"type": "array", "items": {"type": "object"}},
            "referrer_views": {"type": "array", "items": {"type": "object"}}, "daily_views": {"type": "array", "items": {"type": "object"}},
            "funnel": {"type": "object"}, "quote_tracking": {"type": "array", "items": {"type": "object"}}, "generated_at": {"type": "string"}
        }},
        "domain.SubmitTestimonialRequest": {"type": "object", "required": ["name", "testimonial"], "properties": {
            "name": {"type": "string"}, "testimonial": {"type": "string"}, "urls": {"type": "array", "maxItems": 3, "items": {"type": "string"}}
        }},
        "domain.AdminTestimonialRequest": {"type": "object", "required": ["name", "testimonial"], "properties": {
            "name": {"type": "string"}, "testimonial": {"type": "string"}, "urls": {"type": "array", "items": {"type": "string"}}, "is_approved": {"type": "boolean"}
        }},
        "domain.TestimonialDTO": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "testimonial": {"type": "string"},
            "urls": {"type": "array", "items": {"type": "string"}}, "is_approved": {"type": "boolean"},
            "approved_at": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}
        }},
        "domain.PaginatedTestimonials": {"type": "object", "properties": {
            "data": {"type": "array", "items": {"$ref": "#/definitions/domain.TestimonialDTO"}},
            "meta": {"type": "object", "properties": {"page": {"type": "integer"}, "limit": {"type": "integer"}, "total": {"type": "integer"}, "has_more": {"type": "boolean"}}}
        }}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"description": "Back office API key", "type": "apiKey", "name": "x-api-key", "in": "header"},
        "BearerAuth": {"description": "JWT Bearer token", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sprinkle Fairydust Site API",
	Description:      "Quote requests, quote lifecycle links, visitor analytics and testimonials for the Sprinkle Fairydust face painting site",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
