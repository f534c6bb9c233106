package validators

import "go.mongodb.org/mongo-driver/bson"

var CarValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"seats",
			"is_booked",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"type": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"seats": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
				"maximum":  20,
			},

			"max_weight": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"is_booked": bson.M{
				"bsonType": "bool",
			},

			"review_ids": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},
		},
	},
}
