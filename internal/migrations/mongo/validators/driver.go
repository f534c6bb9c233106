package validators

import "go.mongodb.org/mongo-driver/bson"

var DriverValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"phone",
			"driving_license",
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

			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			},

			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 7,
				"maxLength": 20,
			},

			"driving_license": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 50,
			},

			"blood_group": bson.M{
				"bsonType":  "string",
				"maxLength": 3,
			},

			"profile_image": bson.M{
				"bsonType": "string",
			},
		},
	},
}
