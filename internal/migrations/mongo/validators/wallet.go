package validators

import "go.mongodb.org/mongo-driver/bson"

var WalletValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"booking_id",
			"amount",
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

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"amount": bson.M{
				"bsonType":         "double",
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
