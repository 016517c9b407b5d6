package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Collaborator entities owned by the stage/subject/course/user modules.
// This service only reads them for existence checks and display-name
// resolution; it never writes to their collections.

type Stage struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Status string             `bson:"status" json:"status"`
}

type Subject struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
}

type Course struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Instructor string             `bson:"instructor" json:"instructor"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"fullName"`
	Username string             `bson:"username" json:"username"`
	Role     string             `bson:"role" json:"role"`
}
