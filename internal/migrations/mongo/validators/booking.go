package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"car_id",
			"pickup_location",
			"drop_location",
			"travel_date",
			"pickup_time",
			"status",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"car_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"pickup_location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"drop_location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"travel_date": bson.M{
				"bsonType": "string",
			},

			"pickup_time": bson.M{
				"bsonType": "string",
			},

			"luggage": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},

			"extra_passengers": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
				"maximum":  2,
			},

			"distance_km": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"fare": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"active",
					"inactive",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Pending",
					"Paid",
				},
			},

			"claimed": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
