// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "description": "Reports whether the service can reach its database",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/adyen/webhook": {
            "post": {
                "description": "Receives Adyen standard notifications. Requires HTTP Basic auth and, unless disabled, an HMAC signature per item.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Webhook"],
                "summary": "Adyen Webhook",
                "parameters": [
                    {
                        "description": "Adyen notification batch",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.SwaggerNotificationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "[accepted]", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.RespOK"}},
                    "500": {"description": "error message", "schema": {"type": "string"}}
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Opens an Adyen Checkout session. Responds with [sessionPayload, orderReference].",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Storefront"],
                "summary": "Create payment session",
                "parameters": [
                    {
                        "description": "Amount in minor units",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/session.CreateSessionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.RespOK"}}
                }
            }
        },
        "/api/v1/orders": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates an order from a basket.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Storefront"],
                "summary": "Create order",
                "parameters": [
                    {
                        "description": "Order creation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.CreateOrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.RespOK"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.RespOK"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.RespOK"}}
                }
            }
        },
        "/api/v1/orders/{orderNo}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the order total in major units and its currency.",
                "produces": ["application/json"],
                "tags": ["Storefront"],
                "summary": "Get order",
                "parameters": [
                    {"type": "string", "description": "Order number", "name": "orderNo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.OrderSummary"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.RespOK"}}
                }
            }
        },
        "/api/v1/orders/{orderNo}/place": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Places the order after the Drop-in reported its result code. Unsuccessful codes fail the order.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Storefront"],
                "summary": "Place order",
                "parameters": [
                    {"type": "string", "description": "Order number", "name": "orderNo", "in": "path", "required": true},
                    {
                        "description": "Drop-in result",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/order.PlaceOrderRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.PlaceOrderResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.RespOK"}}
                }
            }
        },
        "/api/v1/admin/orders/scan": {
            "post": {
                "description": "Retrieves a paginated and filterable list of orders.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Scan Orders (Admin)",
                "parameters": [
                    {
                        "description": "Filters, pagination, and sorting",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ScanOrdersRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespScanOrders"}}
                }
            }
        },
        "/api/v1/admin/orders/statistics": {
            "post": {
                "description": "Computes daily order counts, paid amounts and status breakdowns.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Order Statistics (Admin)",
                "parameters": [
                    {
                        "description": "Data items and filters",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/statistics.OrderStatisticRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespOrderStatistic"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.RespOK": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        },
        "handlers.RespScanOrders": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/handlers.ScanOrdersResponse"},
                "message": {"type": "string"}
            }
        },
        "handlers.RespOrderStatistic": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/statistics.OrderStatisticResponse"},
                "message": {"type": "string"}
            }
        },
        "statistics.OrderStatisticRequest": {
            "type": "object",
            "properties": {
                "data_items": {"type": "array", "items": {"type": "object", "properties": {"id": {"type": "string"}}}},
                "filters": {"type": "array", "items": {"$ref": "#/definitions/types.CommonFilter"}}
            }
        },
        "statistics.OrderStatisticResponse": {
            "type": "object",
            "properties": {
                "data_items": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "type": "object",
                            "properties": {
                                "date": {"type": "string"},
                                "label": {"type": "string"},
                                "value": {"type": "integer"}
                            }
                        }
                    }
                }
            }
        },
        "handlers.ScanOrdersRequest": {
            "type": "object",
            "properties": {
                "filters": {"type": "array", "items": {"$ref": "#/definitions/types.CommonFilter"}},
                "from": {"type": "integer"},
                "size": {"type": "integer"},
                "sort_by": {"type": "string"},
                "sort_order": {"type": "string"}
            }
        },
        "handlers.ScanOrdersResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handlers.OrderItem"}},
                "total": {"type": "integer"}
            }
        },
        "handlers.OrderItem": {
            "type": "object",
            "properties": {
                "order_no": {"type": "string"},
                "customer_id": {"type": "string"},
                "basket_id": {"type": "string"},
                "currency": {"type": "string"},
                "total": {"type": "integer"},
                "total_major": {"type": "number"},
                "status": {"type": "string"},
                "payment_status": {"type": "string"},
                "psp_reference": {"type": "string"},
                "payment_method": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.SwaggerNotificationRequest": {
            "type": "object",
            "properties": {
                "live": {"type": "string", "example": "false"},
                "notificationItems": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "NotificationRequestItem": {"$ref": "#/definitions/handlers.SwaggerNotificationItem"}
                        }
                    }
                }
            }
        },
        "handlers.SwaggerNotificationItem": {
            "type": "object",
            "properties": {
                "additionalData": {"type": "object", "additionalProperties": {"type": "string"}},
                "amount": {"$ref": "#/definitions/handlers.SwaggerAmount"},
                "eventCode": {"type": "string", "example": "AUTHORISATION"},
                "eventDate": {"type": "string", "example": "2024-05-01T12:00:00+02:00"},
                "merchantAccountCode": {"type": "string", "example": "ShopECOM"},
                "merchantReference": {"type": "string", "example": "ORD123"},
                "originalReference": {"type": "string"},
                "paymentMethod": {"type": "string", "example": "visa"},
                "pspReference": {"type": "string", "example": "7914073381342284"},
                "reason": {"type": "string"},
                "success": {"type": "string", "example": "true"}
            }
        },
        "handlers.SwaggerAmount": {
            "type": "object",
            "properties": {
                "currency": {"type": "string", "example": "EUR"},
                "value": {"type": "integer", "example": 1000}
            }
        },
        "order.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "basketId": {"type": "string"},
                "currency": {"type": "string"},
                "customerId": {"type": "string"},
                "orderNo": {"type": "string"}
            }
        },
        "order.CreateOrderResponse": {
            "type": "object",
            "properties": {"orderNo": {"type": "string"}}
        },
        "order.OrderSummary": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "total": {"type": "number"}
            }
        },
        "order.PlaceOrderRequest": {
            "type": "object",
            "properties": {"resultCode": {"type": "string"}}
        },
        "order.PlaceOrderResult": {
            "type": "object",
            "properties": {
                "error": {"type": "boolean"},
                "message": {"type": "string"},
                "orderNo": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "session.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "object",
                    "properties": {
                        "currency": {"type": "string"},
                        "value": {"type": "integer"}
                    }
                },
                "countryCode": {"type": "string"}
            }
        },
        "types.CommonFilter": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "operator": {"type": "string"},
                "values": {"type": "array", "items": {}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Adyen Bridge API",
	Description:      "Adyen webhook ingestion and storefront order APIs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
